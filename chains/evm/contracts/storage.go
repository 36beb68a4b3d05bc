package contracts

import (
	"context"
	"math/big"

	"github.com/ClipFinance/faucet-lib/chains/evm/abis"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
)

// StorageClaim is one claim recorded by the legacy storage contract.
type StorageClaim struct {
	Claimer     common.Address
	Faucet      common.Address
	Amount      *big.Int
	TxHash      [32]byte
	NetworkName string
	Timestamp   *big.Int
}

// Storage reads the legacy claim storage contract.
type Storage struct {
	reader  types.ContractReader
	address string
}

// NewStorage binds the storage contract at address.
func NewStorage(reader types.ContractReader, address string) *Storage {
	return &Storage{reader: reader, address: address}
}

// Address returns the storage contract address.
func (s *Storage) Address() string {
	return s.address
}

// GetAllClaims returns every claim known to the storage contract.
func (s *Storage) GetAllClaims(ctx context.Context) ([]StorageClaim, error) {
	out, err := call(ctx, s.reader, abis.Storage, s.address, "getAllClaims")
	if err != nil {
		return nil, err
	}
	return convert[[]StorageClaim](out[0])
}
