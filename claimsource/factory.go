package claimsource

import (
	"context"
	"math/big"
	"sort"

	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/sirupsen/logrus"
)

// FactorySource reads the transaction log of every factory configured on a network
// and keeps the claim transactions.
type FactorySource struct {
	logger *logrus.Logger
}

// NewFactorySource creates a factory source.
//
// Parameters:
// - logger: the logger instance.
//
// Returns:
// - *FactorySource: a new FactorySource instance.
func NewFactorySource(logger *logrus.Logger) *FactorySource {
	return &FactorySource{logger: logger}
}

// Kind implements Source.
func (s *FactorySource) Kind() types.SourceKind {
	return types.SourceFactory
}

// Fetch implements Source. Each factory is read in its own goroutine and produces one batch.
func (s *FactorySource) Fetch(ctx context.Context, chain types.Chain) []types.SourceBatch {
	descriptor := chain.Descriptor()
	if len(descriptor.Factories) == 0 {
		return nil
	}

	results := make(chan types.SourceBatch, len(descriptor.Factories))
	for _, factory := range descriptor.Factories {
		go func(factory types.FactoryDescriptor) {
			results <- s.fetchFactory(ctx, chain, descriptor, factory)
		}(factory)
	}

	batches := make([]types.SourceBatch, 0, len(descriptor.Factories))
	for range descriptor.Factories {
		batches = append(batches, <-results)
	}

	sort.Slice(batches, func(i, j int) bool {
		return batches[i].Origin < batches[j].Origin
	})
	return batches
}

func (s *FactorySource) fetchFactory(
	ctx context.Context,
	chain types.Chain,
	descriptor *types.NetworkDescriptor,
	factory types.FactoryDescriptor,
) types.SourceBatch {
	batch := types.SourceBatch{
		Source:  types.SourceFactory,
		ChainID: descriptor.ChainID,
		Origin:  factory.Address,
	}
	logger := s.logger.WithFields(logrus.Fields{
		"chain":   descriptor.Name,
		"factory": factory.Address,
		"type":    factory.Type,
	})

	if !probe(ctx, chain, &batch, logger) {
		return batch
	}

	transactions, err := contracts.NewFactory(chain, factory.Address).GetAllTransactions(ctx)
	if err != nil {
		batch.Err = err
		logger.WithError(err).Warn("Failed to read factory transactions, skipping factory")
		return batch
	}

	for _, tx := range transactions {
		if !IsClaimTransaction(tx.TransactionType) {
			continue
		}

		record, err := toFactoryRecord(descriptor, tx)
		if err != nil {
			batch.Dropped++
			logger.WithError(err).Debug("Dropping factory transaction")
			continue
		}
		batch.Records = append(batch.Records, record)
	}

	logger.WithFields(logrus.Fields{
		"transactions": len(transactions),
		"claims":       len(batch.Records),
		"dropped":      batch.Dropped,
	}).Debug("Read factory transactions")

	return batch
}

// toFactoryRecord converts a claim transaction. Factories do not record transaction
// hashes, so the record is identified by its composite key.
func toFactoryRecord(descriptor *types.NetworkDescriptor, tx contracts.FactoryTransaction) (types.ClaimRecord, error) {
	record := types.ClaimRecord{
		Claimer:     tx.Initiator.Hex(),
		Faucet:      tx.FaucetAddress.Hex(),
		Amount:      new(big.Int),
		NetworkName: descriptor.Name,
		ChainID:     descriptor.ChainID,
		Native:      tx.IsEther,
		Source:      types.SourceFactory,
	}
	if tx.Amount != nil {
		record.Amount.Set(tx.Amount)
	}
	if tx.Timestamp != nil && tx.Timestamp.IsUint64() {
		record.Timestamp = tx.Timestamp.Uint64()
	}
	if tx.IsEther {
		record.TokenSymbol = descriptor.NativeToken.Symbol
		record.TokenDecimals = descriptor.NativeToken.Decimals
	}

	if err := record.Validate(); err != nil {
		return types.ClaimRecord{}, err
	}
	return record, nil
}
