package dbconfig

import (
	"context"
	"database/sql"
	"time"

	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/dbconfig/models"
	"github.com/pkg/errors"
)

// CacheEntriesSchema creates the table backing the shared cache tier.
const CacheEntriesSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
    key         TEXT PRIMARY KEY,
    payload     JSONB NOT NULL,
    fetched_at  TIMESTAMPTZ NOT NULL,
    ttl_seconds BIGINT NOT NULL DEFAULT 0,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// CacheTier is the shared, durable cache tier stored in the cache_entries table.
type CacheTier struct {
	config *DBConfig
}

// NewCacheTier creates a cache tier over the database.
func (r *DBConfig) NewCacheTier() *CacheTier {
	return &CacheTier{config: r}
}

// EnsureCacheSchema creates the cache_entries table when it does not exist.
func (r *DBConfig) EnsureCacheSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, CacheEntriesSchema); err != nil {
		return errors.Wrap(err, "failed to create cache_entries")
	}
	return nil
}

// GetCacheEntry returns the row stored under key, or nil when there is none.
func (r *DBConfig) GetCacheEntry(ctx context.Context, key string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := r.db.QueryRowContext(ctx, `
        SELECT key, payload, fetched_at, ttl_seconds, updated_at
        FROM cache_entries
        WHERE key = $1
    `, key).Scan(
		&entry.Key,
		&entry.Payload,
		&entry.FetchedAt,
		&entry.TTLSeconds,
		&entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cache entry %s", key)
	}
	return &entry, nil
}

// UpsertCacheEntry inserts or overwrites the row stored under entry.Key.
//
// Parameters:
// - ctx: the context for managing the request.
// - entry: the row to store.
//
// Returns:
// - error: an error if the database operation fails.
func (r *DBConfig) UpsertCacheEntry(ctx context.Context, entry models.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
       INSERT INTO cache_entries (key, payload, fetched_at, ttl_seconds, updated_at)
       VALUES ($1, $2, $3, $4, NOW())
       ON CONFLICT (key)
       DO UPDATE SET
           payload = EXCLUDED.payload,
           fetched_at = EXCLUDED.fetched_at,
           ttl_seconds = EXCLUDED.ttl_seconds,
           updated_at = NOW()`,
		entry.Key,
		entry.Payload,
		entry.FetchedAt.UTC(),
		entry.TTLSeconds,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to store cache entry %s", entry.Key)
	}
	return nil
}

// DeleteCacheEntry removes the row stored under key.
func (r *DBConfig) DeleteCacheEntry(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key); err != nil {
		return errors.Wrapf(err, "failed to delete cache entry %s", key)
	}
	return nil
}

// Get returns the entry stored under key.
func (t *CacheTier) Get(ctx context.Context, key string) (types.CacheEntry, bool, error) {
	row, err := t.config.GetCacheEntry(ctx, key)
	if err != nil || row == nil {
		return types.CacheEntry{}, false, err
	}
	return FromModel(*row), true, nil
}

// Put stores the entry, overwriting any previous one.
func (t *CacheTier) Put(ctx context.Context, entry types.CacheEntry) error {
	return t.config.UpsertCacheEntry(ctx, ToModel(entry))
}

// Delete removes the entry stored under key.
func (t *CacheTier) Delete(ctx context.Context, key string) error {
	return t.config.DeleteCacheEntry(ctx, key)
}

// ToModel converts a cache entry to its row.
func ToModel(entry types.CacheEntry) models.CacheEntry {
	return models.CacheEntry{
		Key:        entry.Key,
		Payload:    []byte(entry.Payload),
		FetchedAt:  entry.FetchedAt,
		TTLSeconds: int64(entry.TTL / time.Second),
	}
}

// FromModel converts a row to a cache entry.
func FromModel(row models.CacheEntry) types.CacheEntry {
	return types.CacheEntry{
		Key:       row.Key,
		Payload:   row.Payload,
		FetchedAt: row.FetchedAt,
		TTL:       time.Duration(row.TTLSeconds) * time.Second,
	}
}
