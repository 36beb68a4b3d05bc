package aggregator

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

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

func faucetAt(i int) common.Address {
	return common.HexToAddress(fmt.Sprintf("0x%040x", 0x1000+i))
}

func details(address common.Address, name string) contracts.FaucetDetails {
	return contracts.FaucetDetails{
		FaucetAddress: address,
		Owner:         common.HexToAddress(claimer1),
		Name:          name,
		ClaimAmount:   big.NewInt(1),
		TokenAddress:  common.HexToAddress(cUSD),
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(0),
		Balance:       big.NewInt(0),
	}
}

// enumeratedFactory scripts a factory without bulk details holding count faucets.
func enumeratedFactory(reader *evmtest.Reader, factory string, count int, names map[int]string) {
	addresses := make([]common.Address, count)
	for i := range addresses {
		addresses[i] = faucetAt(i)
		name, ok := names[i]
		if !ok {
			name = fmt.Sprintf("Faucet %d", i)
		}
		reader.Respond(factory, abis.Factory, "getFaucetDetails", []interface{}{addresses[i]}, details(addresses[i], name))
	}
	reader.Respond(factory, abis.Factory, "getAllFaucets", nil, addresses)
}

type waitRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (w *waitRecorder) wait(_ context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delays = append(w.delays, d)
	return nil
}

func newNameCheckAggregator(reader *evmtest.Reader) (*Aggregator, *waitRecorder) {
	agg, _ := newAggregator(map[uint64]*evmtest.Reader{42220: reader}, nil, celo())
	recorder := &waitRecorder{}
	agg.names.wait = recorder.wait
	return agg, recorder
}

func TestCheckNameBatches(t *testing.T) {
	t.Parallel()

	reader := evmtest.NewReader().WithCode(celoFactory)
	enumeratedFactory(reader, celoFactory, 12, map[int]string{11: "Celo Builders"})
	agg, recorder := newNameCheckAggregator(reader)

	result, err := agg.CheckNameExists(context.Background(), 42220, "  celo BUILDERS ")
	require.NoError(t, err)

	assert.True(t, result.Exists)
	assert.False(t, result.Partial)
	assert.Equal(t, "Celo Builders", result.ExistingName)
	assert.Equal(t, strings.ToLower(faucetAt(11).Hex()), result.Faucet)
	assert.Equal(t, celoFactory, result.Factory)
	assert.Equal(t, []int{5, 5, 2}, reader.BatchSizes())
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond}, recorder.delays)
}

func TestCheckNameNoMatch(t *testing.T) {
	t.Parallel()

	reader := evmtest.NewReader().WithCode(celoFactory)
	enumeratedFactory(reader, celoFactory, 12, nil)
	agg, _ := newNameCheckAggregator(reader)

	result, err := agg.CheckNameExists(context.Background(), 42220, "Unused Name")
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.False(t, result.Partial)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []int{5, 5, 2}, reader.BatchSizes())
}

func TestCheckNameSamplesLargeFactories(t *testing.T) {
	t.Parallel()

	reader := evmtest.NewReader().WithCode(celoFactory)
	enumeratedFactory(reader, celoFactory, 60, map[int]string{45: "Hidden"})
	agg, _ := newNameCheckAggregator(reader)

	result, err := agg.CheckNameExists(context.Background(), 42220, "Hidden")
	require.NoError(t, err)

	assert.False(t, result.Exists)
	assert.True(t, result.Partial)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "partial validation")
	assert.Equal(t, []int{5, 5, 5, 5}, reader.BatchSizes())
}

func TestCheckNameBulkDetails(t *testing.T) {
	t.Parallel()

	reader := evmtest.NewReader().WithCode(celoFactory)
	reader.Respond(celoFactory, abis.Factory, "getAllFaucetDetails", nil, []contracts.FaucetDetails{
		details(faucetAt(0), "First"),
		details(faucetAt(1), "Second"),
	})
	agg, _ := newNameCheckAggregator(reader)

	result, err := agg.CheckNameExists(context.Background(), 42220, "second")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.Empty(t, reader.BatchSizes())
	assert.Zero(t, reader.Calls(celoFactory, abis.Factory, "getAllFaucets"))
}

func TestCheckNameChecksEveryFactory(t *testing.T) {
	t.Parallel()

	second := "0x2323232323232323232323232323232323232323"
	network := celo()
	network.Factories = append(network.Factories, types.FactoryDescriptor{Address: second, Type: types.FactoryDropList})

	reader := evmtest.NewReader().WithCode(celoFactory, second)
	reader.Respond(celoFactory, abis.Factory, "getAllFaucetDetails", nil, []contracts.FaucetDetails{})
	reader.Respond(second, abis.Factory, "getAllFaucetDetails", nil, []contracts.FaucetDetails{details(faucetAt(3), "Drop List One")})

	agg, _ := newAggregator(map[uint64]*evmtest.Reader{42220: reader}, nil, network)

	result, err := agg.CheckNameExists(context.Background(), 42220, "drop list one")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.Equal(t, second, result.Factory)
}

func TestCheckNameUnreadableFactoryIsPartial(t *testing.T) {
	t.Parallel()

	reader := evmtest.NewReader().WithCode(celoFactory)
	agg, _ := newNameCheckAggregator(reader)

	result, err := agg.CheckNameExists(context.Background(), 42220, "Anything")
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.True(t, result.Partial)
}

func TestCheckNameErrors(t *testing.T) {
	t.Parallel()

	agg, _ := newNameCheckAggregator(evmtest.NewReader())

	_, err := agg.CheckNameExists(context.Background(), 1, "Name")
	assert.True(t, errors.Is(err, commonerrors.ErrNetworkNotFound))

	_, err = agg.CheckNameExists(context.Background(), 42220, "   ")
	assert.Error(t, err)
}
