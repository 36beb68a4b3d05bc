package evm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ClipFinance/faucet-lib/chainmanager"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/connectionmonitor"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// defaultCallTimeout bounds every single RPC call.
	defaultCallTimeout = 10 * time.Second
	// defaultRequestsPerSecond is the default per-endpoint request rate.
	defaultRequestsPerSecond = 10
	// defaultBurst is the default per-endpoint burst size.
	defaultBurst = 20
)

// Options tune how a chain talks to its endpoints.
//
// Fields:
// - CallTimeout: timeout applied to every single RPC call.
// - RequestsPerSecond: per-endpoint rate limit, zero disables limiting.
// - Burst: per-endpoint burst size.
// - MonitorInterval: health check interval, zero disables the connection monitor.
type Options struct {
	CallTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
	MonitorInterval   time.Duration
}

// DefaultOptions returns the options used when none are provided.
func DefaultOptions() Options {
	return Options{
		CallTimeout:       defaultCallTimeout,
		RequestsPerSecond: defaultRequestsPerSecond,
		Burst:             defaultBurst,
	}
}

func (o Options) withDefaults() Options {
	if o.CallTimeout <= 0 {
		o.CallTimeout = defaultCallTimeout
	}
	if o.RequestsPerSecond > 0 && o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	return o
}

// endpoint is one RPC URL with its lazily dialed clients.
type endpoint struct {
	url       string
	mu        sync.Mutex
	rpcClient *rpc.Client
	client    *ethclient.Client
	limiter   *rate.Limiter
}

// clients returns the dialed clients, dialing on first use.
func (ep *endpoint) clients(ctx context.Context) (*rpc.Client, *ethclient.Client, error) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.rpcClient != nil {
		return ep.rpcClient, ep.client, nil
	}

	rpcClient, err := rpc.DialContext(ctx, ep.url)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to dial %s", ep.url)
	}
	ep.rpcClient = rpcClient
	ep.client = ethclient.NewClient(rpcClient)
	return ep.rpcClient, ep.client, nil
}

// reset closes the clients so that the next call dials again.
func (ep *endpoint) reset() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.rpcClient != nil {
		ep.rpcClient.Close()
	}
	ep.rpcClient = nil
	ep.client = nil
}

// evm represents the read-only EVM chain implementation.
type evm struct {
	descriptor *types.NetworkDescriptor // Network descriptor.
	logger     *logrus.Logger           // Logger for logging events.
	options    Options                  // Call options.
	endpoints  []*endpoint              // Ordered RPC endpoints.

	activeMutex sync.RWMutex // Mutex for active endpoint index.
	active      int          // Index of the preferred endpoint.

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.
}

// NewEvmChain creates a new read-only EVM chain implementation.
//
// Parameters:
// - ctx: the context for managing the connection monitor lifecycle.
// - descriptor: the network descriptor.
// - logger: the logger for logging events.
// - options: call options.
//
// Returns:
// - types.Chain: a new EVM chain instance.
// - error: an error if the descriptor has no usable endpoint.
func NewEvmChain(ctx context.Context, descriptor *types.NetworkDescriptor, logger *logrus.Logger, options Options) (types.Chain, error) {
	if descriptor == nil {
		return nil, commonerrors.ErrInvalidConfig
	}

	options = options.withDefaults()

	chain := &evm{
		descriptor: descriptor.Clone(),
		logger:     logger,
		options:    options,
	}

	for _, url := range descriptor.RPCURLs {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		ep := &endpoint{url: url}
		if options.RequestsPerSecond > 0 {
			ep.limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), options.Burst)
		}
		chain.endpoints = append(chain.endpoints, ep)
	}

	if len(chain.endpoints) == 0 {
		return nil, errors.Wrapf(commonerrors.ErrNoEndpointsAvailable, "network %s", descriptor.Name)
	}

	if options.MonitorInterval > 0 {
		if err := chain.initMonitor(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to init connection monitor")
		}
	}

	builder := chainmanager.NewChainBuilder(descriptor)
	builder.WithContractReader(chain)
	builder.WithBlockReader(chain)
	builder.WithCloser(chain.Close)

	return builder.Build(), nil
}

// Close should be called when the chain is no longer needed.
// It stops the connection monitor and closes every endpoint client.
func (e *evm) Close() {
	e.monitorMutex.Lock()
	if e.monitor != nil {
		e.monitor.Stop()
		e.monitor = nil
	}
	e.monitorMutex.Unlock()

	for _, ep := range e.endpoints {
		ep.reset()
	}
}

// activeIndex returns the index of the preferred endpoint.
func (e *evm) activeIndex() int {
	e.activeMutex.RLock()
	defer e.activeMutex.RUnlock()
	return e.active
}

// setActive promotes the endpoint at index i.
func (e *evm) setActive(i int) {
	e.activeMutex.Lock()
	e.active = i % len(e.endpoints)
	e.activeMutex.Unlock()
}

// ActiveEndpoint returns the URL of the endpoint currently preferred for calls.
func (e *evm) ActiveEndpoint() string {
	return e.endpoints[e.activeIndex()].url
}
