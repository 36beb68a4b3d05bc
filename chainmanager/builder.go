package chainmanager

import (
	"github.com/ClipFinance/faucet-lib/common/types"
)

// ChainBuilder is a builder pattern implementation for chain configuration.
// It allows setting the read components of a chain: contract reader, block reader
// and the closer releasing their connections.
type ChainBuilder struct {
	descriptor *types.NetworkDescriptor // Network descriptor.
	reader     types.ContractReader     // Contract reader implementation.
	blocks     types.BlockReader        // Block reader implementation.
	closer     func()                   // Releases underlying connections.
}

// NewChainBuilder creates a new chain builder instance.
//
// Parameters:
// - descriptor: the network descriptor.
//
// Returns:
// - *ChainBuilder: a new ChainBuilder instance.
func NewChainBuilder(descriptor *types.NetworkDescriptor) *ChainBuilder {
	return &ChainBuilder{
		descriptor: descriptor.Clone(),
	}
}

// WithContractReader sets contract reader implementation.
//
// Parameters:
// - reader: the contract reader implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithContractReader(reader types.ContractReader) *ChainBuilder {
	b.reader = reader
	return b
}

// WithBlockReader sets block reader implementation.
//
// Parameters:
// - blocks: the block reader implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithBlockReader(blocks types.BlockReader) *ChainBuilder {
	b.blocks = blocks
	return b
}

// WithCloser sets the function called when the chain is closed.
func (b *ChainBuilder) WithCloser(closer func()) *ChainBuilder {
	b.closer = closer
	return b
}

// Build creates a new chain instance with configured implementations.
//
// Returns:
// - types.Chain: a new Chain instance with the configured implementations.
func (b *ChainBuilder) Build() types.Chain {
	return NewChain(b.descriptor, b.reader, b.blocks, b.closer)
}
