package types

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	claimer = "0x5000000000000000000000000000000000000005"
	faucet  = "0x3000000000000000000000000000000000000003"
)

func validRecord() ClaimRecord {
	return ClaimRecord{
		Claimer:       claimer,
		Faucet:        faucet,
		Amount:        big.NewInt(100),
		ChainID:       42220,
		NetworkName:   "Celo",
		Timestamp:     1000,
		TokenDecimals: 18,
		Source:        SourceFactory,
	}
}

func TestClaimRecordValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validRecord().Validate())

	mutations := map[string]func(*ClaimRecord){
		"claimer":   func(r *ClaimRecord) { r.Claimer = "nope" },
		"faucet":    func(r *ClaimRecord) { r.Faucet = "0x0000000000000000000000000000000000000000" },
		"amount":    func(r *ClaimRecord) { r.Amount = big.NewInt(-1) },
		"nil":       func(r *ClaimRecord) { r.Amount = nil },
		"timestamp": func(r *ClaimRecord) { r.Timestamp = 0 },
		"chain":     func(r *ClaimRecord) { r.ChainID = 0 },
		"decimals":  func(r *ClaimRecord) { r.TokenDecimals = 37 },
	}
	for name, mutate := range mutations {
		r := validRecord()
		mutate(&r)
		assert.True(t, errors.Is(r.Validate(), commonerrors.ErrMalformedRecord), name)
	}
}

func TestClaimRecordIdentity(t *testing.T) {
	t.Parallel()

	r := validRecord()
	key, hashed := r.IdentityKey()
	assert.False(t, hashed)
	assert.Equal(t, claimer+"|"+faucet+"|1000", key)

	r.TxHash = "0xABC"
	key, hashed = r.IdentityKey()
	assert.True(t, hashed)
	assert.Equal(t, "0xabc", key)

	r.TxHash = "0x" + strings.Repeat("0", 64)
	_, hashed = r.IdentityKey()
	assert.False(t, hashed, "an unset bytes32 is not an identity")
}

func TestWithMetadataReturnsCopy(t *testing.T) {
	t.Parallel()

	r := validRecord()
	annotated := r.WithMetadata(FaucetMetadata{Name: "Celo Builders", TokenSymbol: "cUSD", TokenDecimals: 18, Native: true})

	assert.Equal(t, "Celo Builders", annotated.FaucetName)
	assert.True(t, annotated.Native)
	assert.Empty(t, r.FaucetName)
	assert.False(t, r.Native)

	annotated.Amount.SetInt64(7)
	assert.Equal(t, int64(100), r.Amount.Int64())
}

func TestClaimRecordJSONKeepsAmountExact(t *testing.T) {
	t.Parallel()

	r := validRecord()
	r.Amount, _ = new(big.Int).SetString("1000000000000000000000000000001", 10)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":"1000000000000000000000000000001"`)

	var decoded ClaimRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Zero(t, r.Amount.Cmp(decoded.Amount))

	err = json.Unmarshal([]byte(`{"amount":"1.5"}`), &decoded)
	assert.True(t, errors.Is(err, commonerrors.ErrMalformedRecord))
}

func TestCacheEntryFreshness(t *testing.T) {
	t.Parallel()

	fetched := time.Unix(1_700_000_000, 0)
	entry := CacheEntry{Key: "k", FetchedAt: fetched, TTL: 300 * time.Second}

	assert.Equal(t, Fresh, entry.Freshness(fetched.Add(299*time.Second)))
	assert.Equal(t, Stale, entry.Freshness(fetched.Add(300*time.Second)))
	assert.Equal(t, Stale, entry.Freshness(fetched.Add(301*time.Second)))

	entry.TTL = 0
	assert.Equal(t, Fresh, entry.Freshness(fetched.Add(24*365*time.Hour)))
}

func TestCacheEntryJSONShape(t *testing.T) {
	t.Parallel()

	entry := CacheEntry{
		Key:       "claims:42220",
		Payload:   json.RawMessage(`{"a":1}`),
		FetchedAt: time.Unix(1_700_000_000, 0),
		TTL:       5 * time.Minute,
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.ElementsMatch(t, []string{"key", "payload", "fetchedAt", "ttlSeconds"}, keys(raw))
	assert.EqualValues(t, 300, raw["ttlSeconds"])

	var decoded CacheEntry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry.TTL, decoded.TTL)
	assert.True(t, entry.FetchedAt.Equal(decoded.FetchedAt))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestParseTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EVM, ParseChainType(""))
	assert.Equal(t, EVM, ParseChainType(" evm "))
	assert.Equal(t, UNKNOWN, ParseChainType("svm"))

	assert.Equal(t, FactoryDropList, ParseFactoryType("DropList"))
	assert.Equal(t, FactoryCustom, ParseFactoryType("custom"))
	assert.Equal(t, FactoryDropCode, ParseFactoryType("anything"))
}

func TestSourcePriority(t *testing.T) {
	t.Parallel()

	assert.Less(t, SourceStorage.Priority(), SourceFactory.Priority())
	assert.Less(t, SourceFactory.Priority(), SourceKind("other").Priority())
}

func TestNetworkDescriptorClone(t *testing.T) {
	t.Parallel()

	n := &NetworkDescriptor{
		ChainID:     42220,
		RPCURLs:     []string{"a"},
		Factories:   []FactoryDescriptor{{Address: "f"}},
		KnownTokens: []TokenDescriptor{{Address: "0xAbC", Symbol: "cUSD"}},
	}
	c := n.Clone()
	c.RPCURLs[0] = "b"
	c.Factories[0].Address = "g"
	c.KnownTokens[0].Symbol = "x"

	assert.Equal(t, "a", n.RPCURLs[0])
	assert.Equal(t, "f", n.Factories[0].Address)
	token, ok := n.KnownToken("0xabc")
	require.True(t, ok)
	assert.Equal(t, "cUSD", token.Symbol)
	assert.False(t, n.HasStorage())
	assert.Nil(t, (*NetworkDescriptor)(nil).Clone())
}
