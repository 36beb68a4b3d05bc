package chainmanager

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ChainCreator creates a chain for a network descriptor.
type ChainCreator interface {
	CreateChain(context.Context, *types.NetworkDescriptor, *logrus.Logger) (types.Chain, error)
}

type blockchainRegistry struct {
	logger       *logrus.Logger
	chains       map[uint64]types.Chain
	chainsMutex  sync.RWMutex
	factory      ChainCreator
	factoryMutex sync.RWMutex
}

// NewChainRegistry creates an empty registry that builds chains with the given factory.
func NewChainRegistry(factory ChainCreator, logger *logrus.Logger) types.ChainRegistry {
	return &blockchainRegistry{
		chains:  make(map[uint64]types.Chain),
		factory: factory,
		logger:  logger,
	}
}

// NewChainRegistryFromDescriptors creates a registry and adds every descriptor to it.
// A network that fails to build is logged and skipped so that one bad entry does not
// disable the others.
func NewChainRegistryFromDescriptors(
	ctx context.Context,
	factory ChainCreator,
	descriptors []types.NetworkDescriptor,
	logger *logrus.Logger,
) types.ChainRegistry {
	registry := NewChainRegistry(factory, logger)
	for i := range descriptors {
		if err := registry.Add(ctx, &descriptors[i]); err != nil {
			logger.WithFields(logrus.Fields{
				"chain":   descriptors[i].Name,
				"chainID": descriptors[i].ChainID,
			}).WithError(err).Warn("Skipping network")
		}
	}
	return registry
}

func (r *blockchainRegistry) Add(ctx context.Context, descriptor *types.NetworkDescriptor) error {
	if descriptor == nil || descriptor.ChainID == 0 {
		return ErrInvalidConfig
	}

	r.chainsMutex.RLock()
	_, exists := r.chains[descriptor.ChainID]
	r.chainsMutex.RUnlock()
	if exists {
		return errors.Wrapf(ErrNetworkExists, "chain id %d", descriptor.ChainID)
	}

	// Lock factory for reading to prevent changes during chain creation.
	r.factoryMutex.RLock()
	chain, err := r.factory.CreateChain(ctx, descriptor, r.logger)
	r.factoryMutex.RUnlock()

	if err != nil {
		return err
	}

	// Lock chains map for writing
	r.chainsMutex.Lock()
	if _, exists := r.chains[descriptor.ChainID]; exists {
		r.chainsMutex.Unlock()
		chain.Close()
		return errors.Wrapf(ErrNetworkExists, "chain id %d", descriptor.ChainID)
	}
	r.chains[descriptor.ChainID] = chain
	r.chainsMutex.Unlock()

	return nil
}

func (r *blockchainRegistry) Get(chainID uint64) types.Chain {
	r.chainsMutex.RLock()
	chain := r.chains[chainID]
	r.chainsMutex.RUnlock()
	return chain
}

func (r *blockchainRegistry) GetByName(name string) types.Chain {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	r.chainsMutex.RLock()
	defer r.chainsMutex.RUnlock()

	for _, chain := range r.chains {
		if strings.EqualFold(chain.Descriptor().Name, name) {
			return chain
		}
	}
	return nil
}

func (r *blockchainRegistry) All() []types.Chain {
	r.chainsMutex.RLock()
	chains := make([]types.Chain, 0, len(r.chains))
	for _, chain := range r.chains {
		chains = append(chains, chain)
	}
	r.chainsMutex.RUnlock()

	sort.Slice(chains, func(i, j int) bool {
		return chains[i].Descriptor().ChainID < chains[j].Descriptor().ChainID
	})
	return chains
}

func (r *blockchainRegistry) Remove(chainID uint64) {
	r.chainsMutex.Lock()
	chain := r.chains[chainID]
	delete(r.chains, chainID)
	r.chainsMutex.Unlock()

	if chain != nil {
		chain.Close()
	}
}
