package claimsource

import (
	"context"
	"math/big"

	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
)

// StorageSource reads the legacy storage contract, which records claims made on
// several networks. Rows are attributed to a network by name.
type StorageSource struct {
	registry types.ChainRegistry
	logger   *logrus.Logger
}

// NewStorageSource creates a storage source.
//
// Parameters:
// - registry: resolves the network names found in storage rows.
// - logger: the logger instance.
//
// Returns:
// - *StorageSource: a new StorageSource instance.
func NewStorageSource(registry types.ChainRegistry, logger *logrus.Logger) *StorageSource {
	return &StorageSource{
		registry: registry,
		logger:   logger,
	}
}

// Kind implements Source.
func (s *StorageSource) Kind() types.SourceKind {
	return types.SourceStorage
}

// Fetch implements Source. Networks without a storage contract produce no batch.
func (s *StorageSource) Fetch(ctx context.Context, chain types.Chain) []types.SourceBatch {
	descriptor := chain.Descriptor()
	if !descriptor.HasStorage() {
		return nil
	}

	batch := types.SourceBatch{
		Source:  types.SourceStorage,
		ChainID: descriptor.ChainID,
		Origin:  descriptor.StorageAddress,
	}
	logger := s.logger.WithFields(logrus.Fields{
		"chain":   descriptor.Name,
		"storage": descriptor.StorageAddress,
	})

	if !probe(ctx, chain, &batch, logger) {
		return []types.SourceBatch{batch}
	}

	claims, err := contracts.NewStorage(chain, descriptor.StorageAddress).GetAllClaims(ctx)
	if err != nil {
		batch.Err = err
		logger.WithError(err).Warn("Failed to read storage claims")
		return []types.SourceBatch{batch}
	}

	for _, claim := range claims {
		record, err := s.toRecord(claim)
		if err != nil {
			batch.Dropped++
			logger.WithError(err).WithField("network", claim.NetworkName).Debug("Dropping storage claim")
			continue
		}
		batch.Records = append(batch.Records, record)
	}

	logger.WithFields(logrus.Fields{
		"claims":  len(batch.Records),
		"dropped": batch.Dropped,
	}).Debug("Read storage claims")

	return []types.SourceBatch{batch}
}

func (s *StorageSource) toRecord(claim contracts.StorageClaim) (types.ClaimRecord, error) {
	record := types.ClaimRecord{
		Claimer:     claim.Claimer.Hex(),
		Faucet:      claim.Faucet.Hex(),
		Amount:      new(big.Int),
		TxHash:      hexutil.Encode(claim.TxHash[:]),
		NetworkName: claim.NetworkName,
		Source:      types.SourceStorage,
	}
	if claim.Amount != nil {
		record.Amount.Set(claim.Amount)
	}
	if claim.Timestamp != nil && claim.Timestamp.IsUint64() {
		record.Timestamp = claim.Timestamp.Uint64()
	}

	// Rows for networks that are not configured stay without a chain id and fail validation.
	if network := s.registry.GetByName(claim.NetworkName); network != nil {
		descriptor := network.Descriptor()
		record.ChainID = descriptor.ChainID
		record.NetworkName = descriptor.Name
	}

	if err := record.Validate(); err != nil {
		return types.ClaimRecord{}, err
	}
	return record, nil
}
