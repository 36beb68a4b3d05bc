package chainmanager

import (
	"context"
	"sync"

	"github.com/ClipFinance/faucet-lib/common/types"
)

// Chain implements types.Chain interface with thread-safe access to dependencies.
// Each dependency is protected by a read-write mutex to ensure thread-safe access.
type Chain struct {
	descriptor *types.NetworkDescriptor // Network descriptor.
	reader     types.ContractReader     // Contract reader implementation.
	blocks     types.BlockReader        // Block reader implementation.
	closer     func()                   // Releases underlying connections.

	readerMutex sync.RWMutex // Mutex for contract reader.
	blocksMutex sync.RWMutex // Mutex for block reader.
	closeOnce   sync.Once
}

// NewChain creates a new Chain instance.
//
// Parameters:
// - descriptor: the network descriptor.
// - reader: the contract reader implementation.
// - blocks: the block reader implementation.
// - closer: optional function releasing connections.
//
// Returns:
// - *Chain: a new Chain instance.
func NewChain(
	descriptor *types.NetworkDescriptor,
	reader types.ContractReader,
	blocks types.BlockReader,
	closer func(),
) *Chain {
	return &Chain{
		descriptor: descriptor,
		reader:     reader,
		blocks:     blocks,
		closer:     closer,
	}
}

// Descriptor returns a copy of the network descriptor.
func (c *Chain) Descriptor() *types.NetworkDescriptor {
	return c.descriptor.Clone()
}

// CodeExists checks contract code existence with thread-safe access.
// If the reader is not implemented, it returns an error.
//
// Parameters:
// - ctx: context for managing the request.
// - address: the contract address.
//
// Returns:
// - bool: true if bytecode exists.
// - error: an error if the reader is not implemented or the probe fails.
func (c *Chain) CodeExists(ctx context.Context, address string) (bool, error) {
	c.readerMutex.RLock()
	defer c.readerMutex.RUnlock()

	if c.reader == nil {
		return false, ErrNotImplemented
	}
	return c.reader.CodeExists(ctx, address)
}

// CallContract executes a read-only call with thread-safe access.
// If the reader is not implemented, it returns an error.
//
// Parameters:
// - ctx: context for managing the request.
// - address: the contract address.
// - data: ABI encoded call data.
//
// Returns:
// - []byte: the raw return data.
// - error: an error if the reader is not implemented or the call fails.
func (c *Chain) CallContract(ctx context.Context, address string, data []byte) ([]byte, error) {
	c.readerMutex.RLock()
	defer c.readerMutex.RUnlock()

	if c.reader == nil {
		return nil, ErrNotImplemented
	}
	return c.reader.CallContract(ctx, address, data)
}

// BatchCall executes batched read-only calls with thread-safe access.
func (c *Chain) BatchCall(ctx context.Context, calls []types.CallRequest) ([]types.CallResult, error) {
	c.readerMutex.RLock()
	defer c.readerMutex.RUnlock()

	if c.reader == nil {
		return nil, ErrNotImplemented
	}
	return c.reader.BatchCall(ctx, calls)
}

// BlockNumber returns the latest block number with thread-safe access.
func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	c.blocksMutex.RLock()
	defer c.blocksMutex.RUnlock()

	if c.blocks == nil {
		return 0, ErrNotImplemented
	}
	return c.blocks.BlockNumber(ctx)
}

// BlockTimestamp returns the timestamp of a block with thread-safe access.
func (c *Chain) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.blocksMutex.RLock()
	defer c.blocksMutex.RUnlock()

	if c.blocks == nil {
		return 0, ErrNotImplemented
	}
	return c.blocks.BlockTimestamp(ctx, number)
}

// Close releases the underlying connections. It is safe to call more than once.
func (c *Chain) Close() {
	c.closeOnce.Do(func() {
		if c.closer != nil {
			c.closer()
		}
	})
}
