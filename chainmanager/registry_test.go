package chainmanager_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ClipFinance/faucet-lib/chainmanager"
	"github.com/ClipFinance/faucet-lib/chains/evm/evmtest"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCreator builds chains whose Close is counted. Chain ID 666 fails to build.
type countingCreator struct {
	closed atomic.Int64
}

func (c *countingCreator) CreateChain(_ context.Context, d *types.NetworkDescriptor, _ *logrus.Logger) (types.Chain, error) {
	if d.ChainID == 666 {
		return nil, errors.Wrap(commonerrors.ErrNoEndpointsAvailable, d.Name)
	}
	reader := evmtest.NewReader()
	return chainmanager.NewChainBuilder(d).
		WithContractReader(reader).
		WithBlockReader(reader).
		WithCloser(func() { c.closed.Add(1) }).
		Build(), nil
}

func descriptors() []types.NetworkDescriptor {
	return []types.NetworkDescriptor{
		{ChainID: 8453, Name: "Base", RPCURLs: []string{"http://base"}},
		{ChainID: 666, Name: "Broken", RPCURLs: []string{"http://broken"}},
		{ChainID: 42220, Name: "Celo", RPCURLs: []string{"http://celo"}},
	}
}

func TestRegistryFromDescriptorsSkipsBrokenNetworks(t *testing.T) {
	t.Parallel()

	registry := chainmanager.NewChainRegistryFromDescriptors(context.Background(), &countingCreator{}, descriptors(), evmtest.NewLogger())

	all := registry.All()
	require.Len(t, all, 2)
	assert.EqualValues(t, 8453, all[0].Descriptor().ChainID)
	assert.EqualValues(t, 42220, all[1].Descriptor().ChainID)
	assert.Nil(t, registry.Get(666))
}

func TestRegistryLookups(t *testing.T) {
	t.Parallel()

	registry := chainmanager.NewChainRegistryFromDescriptors(context.Background(), &countingCreator{}, descriptors(), evmtest.NewLogger())

	require.NotNil(t, registry.Get(42220))
	assert.Equal(t, "Celo", registry.GetByName("  celo ").Descriptor().Name)
	assert.Nil(t, registry.GetByName(""))
	assert.Nil(t, registry.GetByName("Lisk"))
	assert.Nil(t, registry.Get(1))
}

func TestRegistryAddErrors(t *testing.T) {
	t.Parallel()

	registry := chainmanager.NewChainRegistry(&countingCreator{}, evmtest.NewLogger())

	assert.True(t, errors.Is(registry.Add(context.Background(), nil), commonerrors.ErrInvalidConfig))
	assert.True(t, errors.Is(registry.Add(context.Background(), &types.NetworkDescriptor{Name: "x"}), commonerrors.ErrInvalidConfig))

	celo := &types.NetworkDescriptor{ChainID: 42220, Name: "Celo"}
	require.NoError(t, registry.Add(context.Background(), celo))
	assert.True(t, errors.Is(registry.Add(context.Background(), celo), commonerrors.ErrNetworkExists))
}

func TestRegistryRemoveClosesChain(t *testing.T) {
	t.Parallel()

	creator := &countingCreator{}
	registry := chainmanager.NewChainRegistry(creator, evmtest.NewLogger())
	require.NoError(t, registry.Add(context.Background(), &types.NetworkDescriptor{ChainID: 42220, Name: "Celo"}))

	chain := registry.Get(42220)
	registry.Remove(42220)
	chain.Close()

	assert.Nil(t, registry.Get(42220))
	assert.EqualValues(t, 1, creator.closed.Load(), "close runs once")

	registry.Remove(42220)
}

func TestChainDescriptorIsACopy(t *testing.T) {
	t.Parallel()

	original := &types.NetworkDescriptor{ChainID: 42220, Name: "Celo", RPCURLs: []string{"http://celo"}}
	chain := chainmanager.NewChainBuilder(original).Build()

	d := chain.Descriptor()
	d.RPCURLs[0] = "http://changed"
	d.Name = "Changed"

	assert.Equal(t, "Celo", chain.Descriptor().Name)
	assert.Equal(t, "http://celo", chain.Descriptor().RPCURLs[0])
	original.Name = "Mutated"
	assert.Equal(t, "Celo", chain.Descriptor().Name)
}

func TestChainWithoutReaders(t *testing.T) {
	t.Parallel()

	chain := chainmanager.NewChainBuilder(&types.NetworkDescriptor{ChainID: 1, Name: "Bare"}).Build()
	ctx := context.Background()

	_, err := chain.CodeExists(ctx, "0x1")
	assert.True(t, errors.Is(err, chainmanager.ErrNotImplemented))
	_, err = chain.CallContract(ctx, "0x1", nil)
	assert.True(t, errors.Is(err, chainmanager.ErrNotImplemented))
	_, err = chain.BatchCall(ctx, nil)
	assert.True(t, errors.Is(err, chainmanager.ErrNotImplemented))
	_, err = chain.BlockNumber(ctx)
	assert.True(t, errors.Is(err, chainmanager.ErrNotImplemented))
	_, err = chain.BlockTimestamp(ctx, 1)
	assert.True(t, errors.Is(err, chainmanager.ErrNotImplemented))

	chain.Close()
}
