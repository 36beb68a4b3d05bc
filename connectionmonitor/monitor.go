package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultHealthCheckInterval defines interval between endpoint health checks
	defaultHealthCheckInterval = 30 * time.Second
	// reconnectTimeout defines the pause between failover attempts
	reconnectTimeout = 5 * time.Second
	// maxReconnectAttempts defines maximum number of failover attempts per check
	maxReconnectAttempts = 3
)

// ConnectionMonitor represents endpoint health monitoring interface
type ConnectionMonitor interface {
	// Start starts connection monitoring
	Start(ctx context.Context) error
	// Stop stops connection monitoring
	Stop()
}

// EndpointClient represents a client talking to one of several RPC endpoints
type EndpointClient interface {
	// CheckConnection checks if the active endpoint answers
	CheckConnection(ctx context.Context) error
	// Reconnect switches to the next endpoint and re-establishes the connection
	Reconnect(ctx context.Context) error
}

type connectionMonitor struct {
	client       EndpointClient
	logger       *logrus.Logger
	networkName  string
	interval     time.Duration
	retryDelay   time.Duration
	stopChan     chan struct{}
	isMonitoring bool
	monitorMutex sync.RWMutex
}

// NewConnectionMonitor creates a new connection monitor instance.
//
// Parameters:
// - client: the endpoint client to monitor.
// - logger: the logger for logging purposes.
// - networkName: the name of the monitored network.
// - interval: the interval between health checks, zero selects the default.
//
// Returns:
// - ConnectionMonitor: the new connection monitor instance.
func NewConnectionMonitor(
	client EndpointClient,
	logger *logrus.Logger,
	networkName string,
	interval time.Duration,
) ConnectionMonitor {
	if interval <= 0 {
		interval = defaultHealthCheckInterval
	}
	return &connectionMonitor{
		client:       client,
		logger:       logger,
		networkName:  networkName,
		interval:     interval,
		retryDelay:   reconnectTimeout,
		stopChan:     make(chan struct{}),
		isMonitoring: false,
	}
}

// Start starts connection monitoring.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the connection monitor is already running.
func (m *connectionMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	if m.isMonitoring {
		m.monitorMutex.Unlock()
		return errors.Errorf("connection monitor is already running for network %s", m.networkName)
	}
	m.isMonitoring = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.monitorMutex.Unlock()

	go m.monitorConnection(ctx, stop)
	return nil
}

// Stop stops connection monitoring.
func (m *connectionMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// monitorConnection monitors the endpoint and fails over if needed.
func (m *connectionMonitor) monitorConnection(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("chain", m.networkName).Info("Connection monitoring stopped due to context cancellation")
			return

		case <-stop:
			m.logger.WithField("chain", m.networkName).Info("Connection monitoring stopped")
			return

		case <-ticker.C:
			if err := m.checkAndReconnect(ctx); err != nil {
				m.logger.WithFields(logrus.Fields{
					"chain": m.networkName,
					"error": err,
				}).Error("Failed to check or reconnect")
			}
		}
	}
}

// checkAndReconnect checks the active endpoint and switches to another one if needed.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if no endpoint could be reached.
func (m *connectionMonitor) checkAndReconnect(ctx context.Context) error {
	err := m.client.CheckConnection(ctx)
	if err == nil {
		m.logger.WithField("chain", m.networkName).Debug("Ping successful")
		return nil
	}

	m.logger.WithFields(logrus.Fields{
		"chain": m.networkName,
		"error": err,
	}).Warn("Connection check failed, switching endpoint")

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		err = m.client.Reconnect(ctx)
		if err == nil {
			err = m.client.CheckConnection(ctx)
		}
		if err == nil {
			m.logger.WithFields(logrus.Fields{
				"chain":   m.networkName,
				"attempt": attempt,
			}).Info("Client successfully reconnected")
			return nil
		}

		m.logger.WithFields(logrus.Fields{
			"chain":   m.networkName,
			"attempt": attempt,
			"error":   err,
		}).Error("Reconnection attempt failed")

		if attempt == maxReconnectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}

	return errors.Wrapf(err, "failed to reconnect to network %s", m.networkName)
}
