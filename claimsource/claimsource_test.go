package claimsource

import (
	"context"
	"math/big"
	"testing"

	"github.com/ClipFinance/faucet-lib/chains/evm/abis"
	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	"github.com/ClipFinance/faucet-lib/chains/evm/evmtest"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storageAddr = "0x1111111111111111111111111111111111111111"
	factoryA    = "0x2222222222222222222222222222222222222222"
	factoryB    = "0x3333333333333333333333333333333333333333"
	faucetAddr  = "0x4444444444444444444444444444444444444444"
	claimerAddr = "0x5555555555555555555555555555555555555555"
)

func celo() types.NetworkDescriptor {
	return types.NetworkDescriptor{
		ChainID:        42220,
		Name:           "Celo",
		ChainType:      types.EVM,
		StorageAddress: storageAddr,
		Factories: []types.FactoryDescriptor{
			{Address: factoryA, Type: types.FactoryDropCode},
			{Address: factoryB, Type: types.FactoryDropList},
		},
		NativeToken: types.TokenDescriptor{Symbol: "CELO", Decimals: 18},
	}
}

func lisk() types.NetworkDescriptor {
	return types.NetworkDescriptor{ChainID: 1135, Name: "Lisk", ChainType: types.EVM}
}

func hash(b byte) [32]byte {
	var h [32]byte
	h[31] = b
	return h
}

func TestIsClaimTransaction(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"claim":              true,
		"Claim":              true,
		"claimWhenActive":    true,
		"dropClaim":          true,
		"setClaimParameters": false,
		"updateClaimAmount":  false,
		"resetAllClaimed":    false,
		"toggleClaim":        false,
		"withdrawClaimable":  false,
		"addToClaimList":     false,
		"fund":               false,
		"":                   false,
	}
	for txType, want := range cases {
		assert.Equal(t, want, IsClaimTransaction(txType), txType)
	}
}

func TestStorageSourceFetch(t *testing.T) {
	t.Parallel()

	logger := evmtest.NewLogger()
	reader := evmtest.NewReader().WithCode(storageAddr)
	reader.Respond(storageAddr, abis.Storage, "getAllClaims", nil, []contracts.StorageClaim{
		{
			Claimer:     common.HexToAddress(claimerAddr),
			Faucet:      common.HexToAddress(faucetAddr),
			Amount:      big.NewInt(100),
			TxHash:      hash(1),
			NetworkName: "celo",
			Timestamp:   big.NewInt(1700000000),
		},
		{
			Claimer:     common.HexToAddress(claimerAddr),
			Faucet:      common.HexToAddress(faucetAddr),
			Amount:      big.NewInt(5),
			TxHash:      hash(2),
			NetworkName: "Lisk",
			Timestamp:   big.NewInt(1700000100),
		},
		{
			Claimer:     common.HexToAddress(claimerAddr),
			Faucet:      common.HexToAddress(faucetAddr),
			Amount:      big.NewInt(7),
			TxHash:      hash(3),
			NetworkName: "Unknown Net",
			Timestamp:   big.NewInt(1700000200),
		},
	})

	registry := evmtest.NewRegistry(logger, map[uint64]*evmtest.Reader{42220: reader}, celo(), lisk())
	source := NewStorageSource(registry, logger)

	batches := source.Fetch(context.Background(), registry.Get(42220))
	require.Len(t, batches, 1)

	batch := batches[0]
	assert.False(t, batch.Failed())
	assert.Equal(t, types.SourceStorage, batch.Source)
	assert.Equal(t, 1, batch.Dropped)
	require.Len(t, batch.Records, 2)

	assert.Equal(t, uint64(42220), batch.Records[0].ChainID)
	assert.Equal(t, "Celo", batch.Records[0].NetworkName)
	assert.Equal(t, "100", batch.Records[0].Amount.String())
	key, isHash := batch.Records[0].IdentityKey()
	assert.True(t, isHash)
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", key)

	assert.Equal(t, uint64(1135), batch.Records[1].ChainID)
}

func TestStorageSourceNotDeployed(t *testing.T) {
	t.Parallel()

	logger := evmtest.NewLogger()
	registry := evmtest.NewRegistry(logger, map[uint64]*evmtest.Reader{42220: evmtest.NewReader()}, celo())

	batches := NewStorageSource(registry, logger).Fetch(context.Background(), registry.Get(42220))
	require.Len(t, batches, 1)
	assert.False(t, batches[0].Failed())
	assert.Empty(t, batches[0].Records)
}

func TestStorageSourceWithoutStorage(t *testing.T) {
	t.Parallel()

	logger := evmtest.NewLogger()
	registry := evmtest.NewRegistry(logger, nil, lisk())

	assert.Empty(t, NewStorageSource(registry, logger).Fetch(context.Background(), registry.Get(1135)))
}

func TestStorageSourceEndpointDown(t *testing.T) {
	t.Parallel()

	logger := evmtest.NewLogger()
	reader := evmtest.NewReader().WithCode(storageAddr).FailAll(errors.New("connection refused"))
	registry := evmtest.NewRegistry(logger, map[uint64]*evmtest.Reader{42220: reader}, celo())

	batches := NewStorageSource(registry, logger).Fetch(context.Background(), registry.Get(42220))
	require.Len(t, batches, 1)
	assert.True(t, batches[0].Failed())
	assert.True(t, errors.Is(batches[0].Err, commonerrors.ErrEndpointUnavailable))
	assert.Empty(t, batches[0].Records)
}

func TestFactorySourceFiltersClaims(t *testing.T) {
	t.Parallel()

	logger := evmtest.NewLogger()
	reader := evmtest.NewReader().WithCode(factoryA, factoryB)
	reader.Respond(factoryA, abis.Factory, "getAllTransactions", nil, []contracts.FactoryTransaction{
		{
			FaucetAddress:   common.HexToAddress(faucetAddr),
			TransactionType: "Claim",
			Initiator:       common.HexToAddress(claimerAddr),
			Amount:          big.NewInt(50),
			IsEther:         true,
			Timestamp:       big.NewInt(1700000300),
		},
		{
			FaucetAddress:   common.HexToAddress(faucetAddr),
			TransactionType: "setClaimParameters",
			Initiator:       common.HexToAddress(claimerAddr),
			Amount:          big.NewInt(0),
			Timestamp:       big.NewInt(1700000301),
		},
		{
			FaucetAddress:   common.HexToAddress(faucetAddr),
			TransactionType: "fund",
			Initiator:       common.HexToAddress(claimerAddr),
			Amount:          big.NewInt(1000),
			Timestamp:       big.NewInt(1700000302),
		},
	})
	reader.Fail(factoryB, abis.Factory, "getAllTransactions", nil, errors.Wrap(commonerrors.ErrEndpointUnavailable, "timeout"))

	chain := evmtest.NewChain(&types.NetworkDescriptor{
		ChainID:     42220,
		Name:        "Celo",
		Factories:   celo().Factories,
		NativeToken: celo().NativeToken,
	}, reader)

	batches := NewFactorySource(logger).Fetch(context.Background(), chain)
	require.Len(t, batches, 2)

	assert.Equal(t, factoryA, batches[0].Origin)
	assert.False(t, batches[0].Failed())
	require.Len(t, batches[0].Records, 1)

	record := batches[0].Records[0]
	assert.Equal(t, types.SourceFactory, record.Source)
	assert.Equal(t, "50", record.Amount.String())
	assert.True(t, record.Native)
	assert.Equal(t, "CELO", record.TokenSymbol)
	assert.Equal(t, uint64(1700000300), record.Timestamp)
	_, isHash := record.IdentityKey()
	assert.False(t, isHash)

	assert.Equal(t, factoryB, batches[1].Origin)
	assert.True(t, batches[1].Failed())
	assert.Empty(t, batches[1].Records)
}

func TestFactorySourceDropsMalformed(t *testing.T) {
	t.Parallel()

	logger := evmtest.NewLogger()
	reader := evmtest.NewReader().WithCode(factoryA)
	reader.Respond(factoryA, abis.Factory, "getAllTransactions", nil, []contracts.FactoryTransaction{
		{
			FaucetAddress:   common.Address{},
			TransactionType: "claim",
			Initiator:       common.HexToAddress(claimerAddr),
			Amount:          big.NewInt(1),
			Timestamp:       big.NewInt(1700000000),
		},
		{
			FaucetAddress:   common.HexToAddress(faucetAddr),
			TransactionType: "claim",
			Initiator:       common.HexToAddress(claimerAddr),
			Amount:          big.NewInt(1),
			Timestamp:       big.NewInt(0),
		},
	})

	chain := evmtest.NewChain(&types.NetworkDescriptor{
		ChainID:   42220,
		Name:      "Celo",
		Factories: []types.FactoryDescriptor{{Address: factoryA}},
	}, reader)

	batches := NewFactorySource(logger).Fetch(context.Background(), chain)
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].Dropped)
	assert.Empty(t, batches[0].Records)
}
