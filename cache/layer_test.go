package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingTier struct{}

func (failingTier) Get(context.Context, string) (types.CacheEntry, bool, error) {
	return types.CacheEntry{}, false, errors.New("connection refused")
}

func (failingTier) Put(context.Context, types.CacheEntry) error {
	return errors.New("connection refused")
}

func (failingTier) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestCacheEntryTTLBoundary(t *testing.T) {
	t.Parallel()

	start := time.Unix(1700000000, 0)
	entry := types.CacheEntry{Key: "k", FetchedAt: start, TTL: 300 * time.Second}

	assert.Equal(t, types.Fresh, entry.Freshness(start.Add(299*time.Second)))
	assert.Equal(t, types.Stale, entry.Freshness(start.Add(300*time.Second)))
	assert.Equal(t, types.Stale, entry.Freshness(start.Add(301*time.Second)))

	entry.TTL = NoExpiry
	assert.Equal(t, types.Fresh, entry.Freshness(start.Add(365*24*time.Hour)))
}

func TestLayerTTLBoundary(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Unix(1700000000, 0)}
	layer := NewLayer(NewLocalTier(), nil, newLogger(), WithClock(c.Now))
	ctx := context.Background()

	require.NoError(t, layer.Put(ctx, "view", map[string]int{"claims": 3}, 300*time.Second))

	var out map[string]int
	c.Advance(299 * time.Second)
	freshness, err := layer.Get(ctx, "view", &out)
	require.NoError(t, err)
	assert.Equal(t, types.Fresh, freshness)

	c.Advance(2 * time.Second)
	freshness, err = layer.Get(ctx, "view", &out)
	require.NoError(t, err)
	assert.Equal(t, types.Stale, freshness)
	assert.Equal(t, 3, out["claims"])
}

func TestLayerMissing(t *testing.T) {
	t.Parallel()

	layer := NewLayer(NewLocalTier(), nil, newLogger())

	var out string
	freshness, err := layer.Get(context.Background(), "absent", &out)
	require.NoError(t, err)
	assert.Equal(t, types.Missing, freshness)
}

func TestLayerServesStaleWhenRefreshFails(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Unix(1700000000, 0)}
	layer := NewLayer(NewLocalTier(), nil, newLogger(), WithClock(c.Now))
	ctx := context.Background()

	require.NoError(t, layer.Put(ctx, "view", "old", time.Minute))
	c.Advance(2 * time.Minute)

	var out string
	freshness, err := layer.GetOrRefresh(ctx, "view", &out, time.Minute, func(context.Context) (interface{}, error) {
		return nil, commonerrors.ErrEndpointUnavailable
	})
	require.NoError(t, err)
	assert.Equal(t, types.Stale, freshness)
	assert.Equal(t, "old", out)
}

func TestLayerRefreshesStaleEntry(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Unix(1700000000, 0)}
	layer := NewLayer(NewLocalTier(), nil, newLogger(), WithClock(c.Now))
	ctx := context.Background()

	require.NoError(t, layer.Put(ctx, "view", "old", time.Minute))
	c.Advance(2 * time.Minute)

	var out string
	freshness, err := layer.GetOrRefresh(ctx, "view", &out, time.Minute, func(context.Context) (interface{}, error) {
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.Fresh, freshness)
	assert.Equal(t, "new", out)

	entry, freshness := layer.Entry(ctx, "view")
	assert.Equal(t, types.Fresh, freshness)
	assert.Equal(t, c.Now(), entry.FetchedAt)
}

func TestLayerMissRefreshFailure(t *testing.T) {
	t.Parallel()

	layer := NewLayer(NewLocalTier(), nil, newLogger())

	var out string
	freshness, err := layer.GetOrRefresh(context.Background(), "view", &out, time.Minute, func(context.Context) (interface{}, error) {
		return nil, commonerrors.ErrEndpointUnavailable
	})
	assert.Equal(t, types.Missing, freshness)
	assert.True(t, errors.Is(err, commonerrors.ErrCacheMiss))
}

func TestLayerFreshSkipsRefresh(t *testing.T) {
	t.Parallel()

	layer := NewLayer(NewLocalTier(), nil, newLogger())
	ctx := context.Background()
	require.NoError(t, layer.Put(ctx, "meta", "value", NoExpiry))

	var calls int32
	var out string
	freshness, err := layer.GetOrRefresh(ctx, "meta", &out, NoExpiry, func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "other", nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.Fresh, freshness)
	assert.Equal(t, "value", out)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestLayerBackgroundRefresh(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Unix(1700000000, 0)}
	layer := NewLayer(NewLocalTier(), nil, newLogger(), WithClock(c.Now), WithBackgroundRefresh())
	ctx := context.Background()

	require.NoError(t, layer.Put(ctx, "view", "old", time.Minute))
	c.Advance(2 * time.Minute)

	release := make(chan struct{})
	var calls int32
	refresh := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "new", nil
	}

	for i := 0; i < 3; i++ {
		var out string
		freshness, err := layer.GetOrRefresh(ctx, "view", &out, time.Minute, refresh)
		require.NoError(t, err)
		assert.Equal(t, types.Stale, freshness)
		assert.Equal(t, "old", out)
	}
	close(release)

	assert.Eventually(t, func() bool {
		var out string
		freshness, _ := layer.Get(ctx, "view", &out)
		return freshness == types.Fresh && out == "new"
	}, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestLayerPrefersNewestTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := NewLocalTier()
	shared := NewLocalTier()
	now := time.Unix(1700000000, 0)

	require.NoError(t, local.Put(ctx, types.CacheEntry{Key: "k", Payload: json.RawMessage(`"local"`), FetchedAt: now.Add(-time.Minute)}))
	require.NoError(t, shared.Put(ctx, types.CacheEntry{Key: "k", Payload: json.RawMessage(`"shared"`), FetchedAt: now}))

	layer := NewLayer(local, shared, newLogger(), WithClock(func() time.Time { return now }))

	var out string
	_, err := layer.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.Equal(t, "shared", out)

	backfilled, ok, err := local.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"shared"`, string(backfilled.Payload))

	// An older shared entry never replaces a newer local one.
	require.NoError(t, local.Put(ctx, types.CacheEntry{Key: "k", Payload: json.RawMessage(`"newer"`), FetchedAt: now.Add(time.Second)}))
	_, err = layer.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.Equal(t, "newer", out)
}

func TestLayerSharedTierFailureDegrades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	layer := NewLayer(NewLocalTier(), failingTier{}, newLogger())

	require.NoError(t, layer.Put(ctx, "k", 42, time.Minute))

	var out int
	freshness, err := layer.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.Equal(t, types.Fresh, freshness)
	assert.Equal(t, 42, out)

	require.NoError(t, layer.Invalidate(ctx, "k"))
}

func TestLayerInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := NewLocalTier()
	shared := NewLocalTier()
	layer := NewLayer(local, shared, newLogger())

	require.NoError(t, layer.Put(ctx, "k", "v", NoExpiry))
	assert.Equal(t, 1, shared.Size())

	require.NoError(t, layer.Invalidate(ctx, "k"))
	assert.Zero(t, local.Size())
	assert.Zero(t, shared.Size())

	var out string
	freshness, err := layer.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.Equal(t, types.Missing, freshness)
}
