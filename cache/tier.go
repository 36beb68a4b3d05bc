// Package cache provides the two tier cache used for aggregate views and faucet metadata.
package cache

import (
	"context"
	"sync"

	"github.com/ClipFinance/faucet-lib/common/types"
)

// Tier is one storage level of the cache.
type Tier interface {
	// Get returns the entry stored under key and whether it exists.
	Get(ctx context.Context, key string) (types.CacheEntry, bool, error)
	// Put stores the entry, overwriting any previous entry with the same key.
	Put(ctx context.Context, entry types.CacheEntry) error
	// Delete removes the entry stored under key.
	Delete(ctx context.Context, key string) error
}

// Compile-time interface check
var _ Tier = (*LocalTier)(nil)

// LocalTier is an in-process tier.
type LocalTier struct {
	mu      sync.RWMutex
	entries map[string]types.CacheEntry
}

// NewLocalTier creates an empty local tier.
func NewLocalTier() *LocalTier {
	return &LocalTier{
		entries: make(map[string]types.CacheEntry),
	}
}

// Get implements Tier.
func (t *LocalTier) Get(_ context.Context, key string) (types.CacheEntry, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[key]
	if !ok {
		return types.CacheEntry{}, false, nil
	}
	entry.Payload = append([]byte(nil), entry.Payload...)
	return entry, true, nil
}

// Put implements Tier.
func (t *LocalTier) Put(_ context.Context, entry types.CacheEntry) error {
	entry.Payload = append([]byte(nil), entry.Payload...)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[entry.Key] = entry
	return nil
}

// Delete implements Tier.
func (t *LocalTier) Delete(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}

// Size returns the number of entries.
func (t *LocalTier) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
