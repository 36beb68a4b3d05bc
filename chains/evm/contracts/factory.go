package contracts

import (
	"context"
	"math/big"

	"github.com/ClipFinance/faucet-lib/chains/evm/abis"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// FactoryTransaction is one entry of a factory's transaction log.
type FactoryTransaction struct {
	FaucetAddress   common.Address
	TransactionType string
	Initiator       common.Address
	Amount          *big.Int
	IsEther         bool
	Timestamp       *big.Int
}

// FaucetDetails is the description of a faucet stored by its factory.
type FaucetDetails struct {
	FaucetAddress common.Address
	Owner         common.Address
	Name          string
	ClaimAmount   *big.Int
	TokenAddress  common.Address
	StartTime     *big.Int
	EndTime       *big.Int
	IsClaimActive bool
	Balance       *big.Int
	IsEther       bool
	UseBackend    bool
}

// DetailsResult is the outcome of reading one faucet's details in a batch.
type DetailsResult struct {
	Faucet  string
	Details FaucetDetails
	Err     error
}

// Factory reads a factory contract.
type Factory struct {
	reader  types.ContractReader
	address string
}

// NewFactory binds a factory contract at address.
func NewFactory(reader types.ContractReader, address string) *Factory {
	return &Factory{reader: reader, address: address}
}

// Address returns the factory address.
func (f *Factory) Address() string {
	return f.address
}

// GetAllTransactions returns every transaction recorded by the factory.
func (f *Factory) GetAllTransactions(ctx context.Context) ([]FactoryTransaction, error) {
	out, err := call(ctx, f.reader, abis.Factory, f.address, "getAllTransactions")
	if err != nil {
		return nil, err
	}
	return convert[[]FactoryTransaction](out[0])
}

// GetAllFaucets returns the addresses of every faucet deployed by the factory.
func (f *Factory) GetAllFaucets(ctx context.Context) ([]common.Address, error) {
	out, err := call(ctx, f.reader, abis.Factory, f.address, "getAllFaucets")
	if err != nil {
		return nil, err
	}
	return convert[[]common.Address](out[0])
}

// GetFaucetDetails returns the details of one faucet.
func (f *Factory) GetFaucetDetails(ctx context.Context, faucet string) (FaucetDetails, error) {
	out, err := call(ctx, f.reader, abis.Factory, f.address, "getFaucetDetails", common.HexToAddress(faucet))
	if err != nil {
		return FaucetDetails{}, err
	}
	return convert[FaucetDetails](out[0])
}

// GetAllFaucetDetails returns the details of every faucet in a single read.
// Older factories do not implement it and return ErrMethodUnsupported.
func (f *Factory) GetAllFaucetDetails(ctx context.Context) ([]FaucetDetails, error) {
	out, err := call(ctx, f.reader, abis.Factory, f.address, "getAllFaucetDetails")
	if err != nil {
		return nil, err
	}
	return convert[[]FaucetDetails](out[0])
}

// BatchFaucetDetails reads the details of several faucets in one JSON-RPC batch.
// Each faucet carries its own error; the call only fails when the batch could not be sent.
func (f *Factory) BatchFaucetDetails(ctx context.Context, faucets []string) ([]DetailsResult, error) {
	calls := make([]types.CallRequest, 0, len(faucets))
	for _, faucet := range faucets {
		data, err := abis.Factory.Pack("getFaucetDetails", common.HexToAddress(faucet))
		if err != nil {
			return nil, errors.Wrap(err, "failed to pack getFaucetDetails")
		}
		calls = append(calls, types.CallRequest{To: f.address, Data: data})
	}

	results, err := f.reader.BatchCall(ctx, calls)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to batch getFaucetDetails on %s", f.address)
	}
	if len(results) != len(faucets) {
		return nil, errors.Errorf("batch returned %d results for %d calls", len(results), len(faucets))
	}

	out := make([]DetailsResult, len(faucets))
	for i, faucet := range faucets {
		out[i].Faucet = faucet
		if results[i].Err != nil {
			out[i].Err = results[i].Err
			continue
		}

		values, err := unpack(abis.Factory, "getFaucetDetails", results[i].Data)
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Details, out[i].Err = convert[FaucetDetails](values[0])
	}

	return out, nil
}
