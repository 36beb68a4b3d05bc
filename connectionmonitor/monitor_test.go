package connectionmonitor

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient fails CheckConnection until healthyAfter reconnects happened.
type scriptedClient struct {
	mu           sync.Mutex
	checks       int
	reconnects   int
	healthyAfter int
	failForever  bool
}

func (c *scriptedClient) CheckConnection(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks++
	if c.failForever || c.reconnects < c.healthyAfter {
		return errors.New("endpoint down")
	}
	return nil
}

func (c *scriptedClient) Reconnect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconnects++
	return nil
}

func (c *scriptedClient) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checks, c.reconnects
}

func newTestMonitor(client EndpointClient, interval time.Duration) *connectionMonitor {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := NewConnectionMonitor(client, logger, "Celo", interval).(*connectionMonitor)
	m.retryDelay = time.Millisecond
	return m
}

func TestCheckAndReconnectHealthy(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{}
	require.NoError(t, newTestMonitor(client, time.Minute).checkAndReconnect(context.Background()))

	checks, reconnects := client.counts()
	assert.Equal(t, 1, checks)
	assert.Zero(t, reconnects)
}

func TestCheckAndReconnectFailsOver(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{healthyAfter: 2}
	require.NoError(t, newTestMonitor(client, time.Minute).checkAndReconnect(context.Background()))

	_, reconnects := client.counts()
	assert.Equal(t, 2, reconnects)
}

func TestCheckAndReconnectGivesUp(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{failForever: true}
	err := newTestMonitor(client, time.Minute).checkAndReconnect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Celo")

	_, reconnects := client.counts()
	assert.Equal(t, maxReconnectAttempts, reconnects)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{}
	m := newTestMonitor(client, 5*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Start(context.Background()))

	assert.Eventually(t, func() bool {
		checks, _ := client.counts()
		return checks >= 2
	}, time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()

	require.NoError(t, m.Start(context.Background()), "a stopped monitor can be restarted")
	m.Stop()
}

func TestDefaultInterval(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&scriptedClient{}, 0)
	assert.Equal(t, defaultHealthCheckInterval, m.interval)
}
