// Package metadata resolves display names and token details of faucets through an
// ordered chain of strategies that always ends in a placeholder.
package metadata

import (
	"context"
	"strconv"
	"sync"

	"github.com/ClipFinance/faucet-lib/cache"
	"github.com/ClipFinance/faucet-lib/chains/evm/contracts"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/sirupsen/logrus"
)

// Key returns the cache key of a faucet: "{chainId}-{faucet}".
func Key(chainID uint64, faucet string) string {
	normalized := utils.NormalizeAddress(faucet)
	if normalized == "" {
		normalized = faucet
	}
	return strconv.FormatUint(chainID, 10) + "-" + normalized
}

// Resolver resolves faucet metadata.
//
// Results are memoized for the lifetime of the resolver. Live results are persisted
// to the cache layer without expiry so later processes can fall back to them.
// Placeholders are neither memoized nor persisted and are retried on the next call.
type Resolver struct {
	strategies []Strategy
	layer      *cache.Layer
	logger     *logrus.Logger

	memoMutex sync.RWMutex
	memo      map[string]types.FaucetMetadata
}

// NewResolver creates a resolver with the default chain: live read, cache, native
// asset table, placeholder.
//
// Parameters:
// - layer: the cache layer persisting resolved values, nil to skip persistence.
// - logger: the logger instance.
//
// Returns:
// - *Resolver: a new Resolver instance.
func NewResolver(layer *cache.Layer, logger *logrus.Logger) *Resolver {
	strategies := []Strategy{&liveStrategy{variants: contracts.FaucetVariants, tokens: NewTokenResolver()}}
	if layer != nil {
		strategies = append(strategies, &cacheStrategy{layer: layer})
	}
	strategies = append(strategies, nativeStrategy{})
	return NewResolverWithStrategies(layer, logger, strategies...)
}

// NewResolverWithStrategies creates a resolver trying the given strategies in order.
// The placeholder strategy is always appended.
func NewResolverWithStrategies(layer *cache.Layer, logger *logrus.Logger, strategies ...Strategy) *Resolver {
	chain := append([]Strategy(nil), strategies...)
	chain = append(chain, placeholderStrategy{})
	return &Resolver{
		strategies: chain,
		layer:      layer,
		logger:     logger,
		memo:       make(map[string]types.FaucetMetadata),
	}
}

// Resolve returns metadata for the faucet. It never fails.
func (r *Resolver) Resolve(ctx context.Context, req Request) types.FaucetMetadata {
	descriptor := req.Chain.Descriptor()
	key := Key(descriptor.ChainID, req.Faucet)

	r.memoMutex.RLock()
	meta, ok := r.memo[key]
	r.memoMutex.RUnlock()
	if ok {
		return meta
	}

	logger := r.logger.WithFields(logrus.Fields{
		"chain":  descriptor.Name,
		"faucet": req.Faucet,
	})

	for _, strategy := range r.strategies {
		meta, err := strategy.Resolve(ctx, req)
		if err != nil {
			logger.WithError(err).WithField("strategy", strategy.Name()).Debug("Metadata strategy failed")
			continue
		}
		meta.Source = strategy.Name()

		switch meta.Source {
		case types.ResolvedPlaceholder:
			logger.Warn("Using placeholder metadata")
			return meta
		case types.ResolvedLive:
			if r.layer != nil {
				if err := r.layer.Put(ctx, key, meta, cache.NoExpiry); err != nil {
					logger.WithError(err).Warn("Failed to persist metadata")
				}
			}
		}

		r.memoMutex.Lock()
		r.memo[key] = meta
		r.memoMutex.Unlock()
		return meta
	}

	// Unreachable, the placeholder strategy never fails.
	return Placeholder(descriptor.ChainID, req.Faucet)
}

// Invalidate drops the memoized and persisted metadata of a faucet.
func (r *Resolver) Invalidate(ctx context.Context, chainID uint64, faucet string) {
	key := Key(chainID, faucet)

	r.memoMutex.Lock()
	delete(r.memo, key)
	r.memoMutex.Unlock()

	if r.layer != nil {
		if err := r.layer.Invalidate(ctx, key); err != nil {
			r.logger.WithError(err).WithField("key", key).Warn("Failed to invalidate metadata")
		}
	}
}
