package cache

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultViewTTL is how long aggregate views stay fresh.
	DefaultViewTTL = 5 * time.Minute
	// NoExpiry marks entries that stay fresh until invalidated.
	NoExpiry time.Duration = 0
)

// RefreshFunc produces a new value for a key.
type RefreshFunc func(ctx context.Context) (interface{}, error)

// Layer reads the local tier, then the shared tier, and serves stale entries when a
// refresh fails. Once a key has been populated it is never reported missing until it
// is invalidated.
type Layer struct {
	local      Tier
	shared     Tier
	logger     *logrus.Logger
	now        func() time.Time
	background bool
	group      singleflight.Group
}

// Option configures a Layer.
type Option func(*Layer)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Layer) {
		l.now = now
	}
}

// WithBackgroundRefresh makes GetOrRefresh return stale entries immediately and
// refresh them in the background.
func WithBackgroundRefresh() Option {
	return func(l *Layer) {
		l.background = true
	}
}

// NewLayer creates a cache layer.
//
// Parameters:
// - local: the fast, process local tier.
// - shared: the durable tier shared between processes, may be nil.
// - logger: the logger instance.
// - opts: optional settings.
//
// Returns:
// - *Layer: a new Layer instance.
func NewLayer(local, shared Tier, logger *logrus.Logger, opts ...Option) *Layer {
	l := &Layer{
		local:  local,
		shared: shared,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Entry returns the current entry for key. When both tiers hold an entry the one
// fetched last wins and is copied into the local tier.
func (l *Layer) Entry(ctx context.Context, key string) (types.CacheEntry, types.Freshness) {
	local, inLocal, err := l.local.Get(ctx, key)
	if err != nil {
		l.logger.WithError(err).WithField("key", key).Warn("Failed to read local cache")
		inLocal = false
	}

	if l.shared != nil {
		shared, inShared, err := l.shared.Get(ctx, key)
		if err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Failed to read shared cache, using local tier only")
		} else if inShared && (!inLocal || shared.FetchedAt.After(local.FetchedAt)) {
			if err := l.local.Put(ctx, shared); err != nil {
				l.logger.WithError(err).WithField("key", key).Warn("Failed to backfill local cache")
			}
			local, inLocal = shared, true
		}
	}

	if !inLocal {
		return types.CacheEntry{}, types.Missing
	}
	return local, local.Freshness(l.now())
}

// Get decodes the entry for key into out. A missing key returns Missing and leaves
// out untouched.
func (l *Layer) Get(ctx context.Context, key string, out interface{}) (types.Freshness, error) {
	entry, freshness := l.Entry(ctx, key)
	if freshness == types.Missing {
		return types.Missing, nil
	}
	if err := json.Unmarshal(entry.Payload, out); err != nil {
		return types.Missing, errors.Wrapf(err, "failed to decode cache entry %s", key)
	}
	return freshness, nil
}

// Put encodes value and stores it in both tiers. A failing shared tier is logged
// and the value stays available locally.
func (l *Layer) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry %s", key)
	}
	_, err = l.put(ctx, key, payload, ttl)
	return err
}

func (l *Layer) put(ctx context.Context, key string, payload []byte, ttl time.Duration) (types.CacheEntry, error) {
	entry := types.CacheEntry{
		Key:       key,
		Payload:   payload,
		FetchedAt: l.now(),
		TTL:       ttl,
	}

	if err := l.local.Put(ctx, entry); err != nil {
		return entry, errors.Wrapf(err, "failed to store cache entry %s", key)
	}
	if l.shared != nil {
		if err := l.shared.Put(ctx, entry); err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Failed to write shared cache")
		}
	}
	return entry, nil
}

// GetOrRefresh returns the cached value for key, calling refresh when the entry is
// missing or stale.
//
// A fresh entry is returned as is. A stale entry is refreshed synchronously, or in the
// background when configured; if the refresh fails the stale value is returned with
// Stale and no error. A missing entry is refreshed synchronously and a failure is
// reported as ErrCacheMiss. Concurrent refreshes of the same key run once.
func (l *Layer) GetOrRefresh(
	ctx context.Context,
	key string,
	out interface{},
	ttl time.Duration,
	refresh RefreshFunc,
) (types.Freshness, error) {
	entry, freshness := l.Entry(ctx, key)

	switch freshness {
	case types.Fresh:
		return types.Fresh, decode(entry, out)

	case types.Stale:
		if l.background {
			go l.refreshBackground(context.WithoutCancel(ctx), key, ttl, refresh)
			return types.Stale, decode(entry, out)
		}

		refreshed, err := l.refresh(ctx, key, ttl, refresh)
		if err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Refresh failed, serving stale entry")
			return types.Stale, decode(entry, out)
		}
		return types.Fresh, decode(refreshed, out)

	default:
		refreshed, err := l.refresh(ctx, key, ttl, refresh)
		if err != nil {
			return types.Missing, errors.Wrapf(commonerrors.ErrCacheMiss, "%s: %v", key, err)
		}
		return types.Fresh, decode(refreshed, out)
	}
}

func (l *Layer) refresh(ctx context.Context, key string, ttl time.Duration, refresh RefreshFunc) (types.CacheEntry, error) {
	result, err, _ := l.group.Do(key, func() (interface{}, error) {
		value, err := refresh(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode cache entry %s", key)
		}
		return l.put(ctx, key, payload, ttl)
	})
	if err != nil {
		return types.CacheEntry{}, err
	}
	return result.(types.CacheEntry), nil
}

func (l *Layer) refreshBackground(ctx context.Context, key string, ttl time.Duration, refresh RefreshFunc) {
	if _, err := l.refresh(ctx, key, ttl, refresh); err != nil {
		l.logger.WithError(err).WithField("key", key).Warn("Background refresh failed")
	}
}

// Invalidate removes key from both tiers.
func (l *Layer) Invalidate(ctx context.Context, key string) error {
	if err := l.local.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "failed to invalidate cache entry %s", key)
	}
	if l.shared != nil {
		if err := l.shared.Delete(ctx, key); err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Failed to invalidate shared cache")
		}
	}
	return nil
}

func decode(entry types.CacheEntry, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(entry.Payload, out); err != nil {
		return errors.Wrapf(err, "failed to decode cache entry %s", entry.Key)
	}
	return nil
}
