package metadata

import (
	"context"
	"strconv"
	"sync"

	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
)

// TokenResolver resolves token symbol and decimals. Results read from chain are
// kept for the lifetime of the resolver.
type TokenResolver struct {
	mu   sync.RWMutex
	memo map[string]types.TokenDescriptor
}

// NewTokenResolver creates a token resolver.
func NewTokenResolver() *TokenResolver {
	return &TokenResolver{
		memo: make(map[string]types.TokenDescriptor),
	}
}

// Resolve returns the descriptor of token on the chain. The zero address stands for
// the native asset. Well-known tokens of the network are answered without a read.
func (t *TokenResolver) Resolve(ctx context.Context, chain types.Chain, token string) (types.TokenDescriptor, error) {
	descriptor := chain.Descriptor()
	if utils.IsZeroAddress(token) {
		return descriptor.NativeToken, nil
	}
	if known, ok := descriptor.KnownToken(token); ok {
		return known, nil
	}

	key := strconv.FormatUint(descriptor.ChainID, 10) + "-" + utils.NormalizeAddress(token)

	t.mu.RLock()
	cached, ok := t.memo[key]
	t.mu.RUnlock()
	if ok {
		return cached, nil
	}

	symbol, err := contracts.TokenSymbol(ctx, chain, token)
	if err != nil {
		return types.TokenDescriptor{}, err
	}
	decimals, err := contracts.TokenDecimals(ctx, chain, token)
	if err != nil {
		return types.TokenDescriptor{}, err
	}

	resolved := types.TokenDescriptor{
		Address:  utils.NormalizeAddress(token),
		Symbol:   symbol,
		Decimals: decimals,
	}

	t.mu.Lock()
	t.memo[key] = resolved
	t.mu.Unlock()

	return resolved, nil
}
