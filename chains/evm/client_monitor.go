package evm

import (
	"context"

	"github.com/ClipFinance/faucet-lib/connectionmonitor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// evmConnectionManager implements the EndpointClient interface and manages endpoint failover.
type evmConnectionManager struct {
	chain *evm // Reference to the EVM chain instance.
}

// initMonitor initializes the connection monitor for the EVM chain.
//
// Parameters:
// - ctx: the context for managing the initialization process.
//
// Returns:
// - error: an error if there is an issue starting the connection monitor.
func (e *evm) initMonitor(ctx context.Context) error {
	e.monitorMutex.Lock()
	defer e.monitorMutex.Unlock()

	connectionManager := &evmConnectionManager{chain: e}
	e.monitor = connectionmonitor.NewConnectionMonitor(connectionManager, e.logger, e.descriptor.Name, e.options.MonitorInterval)
	return e.monitor.Start(ctx)
}

// CheckConnection checks the active endpoint by retrieving the current block number.
// It bypasses failover so that a dead preferred endpoint is detected.
func (w *evmConnectionManager) CheckConnection(ctx context.Context) error {
	ep := w.chain.endpoints[w.chain.activeIndex()]

	callCtx, cancel := context.WithTimeout(ctx, w.chain.options.CallTimeout)
	defer cancel()

	_, client, err := ep.clients(callCtx)
	if err != nil {
		return err
	}

	if _, err := client.BlockNumber(callCtx); err != nil {
		return errors.Wrapf(err, "endpoint %s", ep.url)
	}
	return nil
}

// Reconnect drops the active endpoint's connection and promotes the next endpoint.
func (w *evmConnectionManager) Reconnect(ctx context.Context) error {
	current := w.chain.activeIndex()
	w.chain.endpoints[current].reset()

	next := (current + 1) % len(w.chain.endpoints)
	if _, _, err := w.chain.endpoints[next].clients(ctx); err != nil {
		return err
	}
	w.chain.setActive(next)

	w.chain.logger.WithFields(logrus.Fields{
		"chain":    w.chain.descriptor.Name,
		"endpoint": w.chain.endpoints[next].url,
	}).Info("Promoted RPC endpoint")

	return nil
}
