package chains

import (
	"context"
	"sync"

	"github.com/ClipFinance/faucet-lib/chains/evm"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	commontypes "github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ChainConstructor represents a function that constructs a new chain instance.
//
// Parameters:
// - ctx: the context for managing background tasks of the chain.
// - descriptor: the network descriptor.
// - logger: the logger for logging purposes.
//
// Returns:
// - commontypes.Chain: the constructed chain instance.
// - error: an error if the chain construction fails.
type ChainConstructor func(ctx context.Context, descriptor *commontypes.NetworkDescriptor, logger *logrus.Logger) (commontypes.Chain, error)

// ChainFactory defines the interface for chain creation.
type ChainFactory interface {
	// RegisterConstructor registers a new chain constructor for a given chain type.
	//
	// Parameters:
	// - chainType: the type of the chain to register.
	// - constructor: the constructor function for the chain type.
	RegisterConstructor(chainType commontypes.ChainType, constructor ChainConstructor)

	// CreateChain creates a new chain instance based on the descriptor.
	//
	// Parameters:
	// - ctx: the context for managing background tasks of the chain.
	// - descriptor: the network descriptor.
	// - logger: the logger for logging purposes.
	//
	// Returns:
	// - commontypes.Chain: the created chain instance.
	// - error: an error if the chain creation fails.
	CreateChain(ctx context.Context, descriptor *commontypes.NetworkDescriptor, logger *logrus.Logger) (commontypes.Chain, error)
}

type chainFactory struct {
	// constructors stores the mapping of chain types to their constructors.
	constructors map[commontypes.ChainType]ChainConstructor
	// constructorsMutex protects access to the constructors map.
	constructorsMutex sync.RWMutex
	// evmOptions are passed to every EVM chain.
	evmOptions evm.Options
}

// NewChainFactory creates a new instance of the chain factory.
//
// Parameters:
// - evmOptions: call options for EVM chains.
//
// Returns:
// - ChainFactory: the new chain factory instance.
func NewChainFactory(evmOptions evm.Options) ChainFactory {
	factory := &chainFactory{
		constructors: make(map[commontypes.ChainType]ChainConstructor),
		evmOptions:   evmOptions,
	}

	// Initialize with default constructors.
	factory.registerConstructors()

	return factory
}

// RegisterConstructor registers a new chain constructor.
func (f *chainFactory) RegisterConstructor(chainType commontypes.ChainType, constructor ChainConstructor) {
	f.constructorsMutex.Lock()
	defer f.constructorsMutex.Unlock()

	f.constructors[chainType] = constructor
}

// CreateChain creates a new chain instance based on the descriptor.
func (f *chainFactory) CreateChain(ctx context.Context, descriptor *commontypes.NetworkDescriptor, logger *logrus.Logger) (commontypes.Chain, error) {
	if descriptor == nil {
		return nil, commonerrors.ErrInvalidConfig
	}

	chainType := descriptor.ChainType
	if chainType == "" {
		chainType = commontypes.EVM
	}

	f.constructorsMutex.RLock()
	constructor, exists := f.constructors[chainType]
	f.constructorsMutex.RUnlock()

	if !exists {
		return nil, errors.Wrapf(commonerrors.ErrInvalidChainType, "%s", chainType)
	}

	return constructor(ctx, descriptor, logger)
}

// registerConstructors registers the blockchain constructors for the chain factory instance.
func (f *chainFactory) registerConstructors() {
	// Register EVM chain constructor with the factory.
	f.RegisterConstructor(commontypes.EVM, func(ctx context.Context, descriptor *commontypes.NetworkDescriptor, logger *logrus.Logger) (commontypes.Chain, error) {
		return evm.NewEvmChain(ctx, descriptor, logger, f.evmOptions)
	})
}
