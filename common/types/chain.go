package types

import (
	"context"
	"strings"
)

// TokenDescriptor describes a token whose symbol and decimals are known without an RPC read.
//
// Fields:
// - Address: the token contract address (empty for the native asset).
// - Symbol: the token symbol.
// - Decimals: the token decimals.
type TokenDescriptor struct {
	Address  string `yaml:"address" json:"address,omitempty"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Decimals uint8  `yaml:"decimals" json:"decimals"`
}

// FactoryDescriptor describes one factory contract deployed on a network.
//
// Fields:
// - Address: the factory contract address.
// - Type: the family of faucets the factory deploys.
type FactoryDescriptor struct {
	Address string      `yaml:"address" json:"address"`
	Type    FactoryType `yaml:"type" json:"type"`
}

// NetworkDescriptor holds the static description of a supported network.
//
// Fields:
// - ChainID: the unique identifier for the chain.
// - Name: the display name of the network.
// - ChainType: the type of the chain.
// - RPCURLs: ordered list of RPC endpoints, the first one is preferred.
// - Factories: factory contracts deployed on the network.
// - StorageAddress: optional legacy storage contract holding claim history.
// - Color: display color used by consumers.
// - NativeToken: symbol and decimals of the network's native asset.
// - KnownTokens: well-known ERC-20 tokens on the network.
type NetworkDescriptor struct {
	ChainID        uint64              `yaml:"chain_id" json:"chainId"`
	Name           string              `yaml:"name" json:"name"`
	ChainType      ChainType           `yaml:"chain_type" json:"chainType"`
	RPCURLs        []string            `yaml:"rpc_urls" json:"rpcUrls"`
	Factories      []FactoryDescriptor `yaml:"factories" json:"factories"`
	StorageAddress string              `yaml:"storage_address" json:"storageAddress,omitempty"`
	Color          string              `yaml:"color" json:"color,omitempty"`
	NativeToken    TokenDescriptor     `yaml:"native_token" json:"nativeToken"`
	KnownTokens    []TokenDescriptor   `yaml:"known_tokens" json:"knownTokens,omitempty"`
}

// Clone returns a deep copy of the descriptor so callers can never mutate shared configuration.
func (n *NetworkDescriptor) Clone() *NetworkDescriptor {
	if n == nil {
		return nil
	}
	c := *n
	c.RPCURLs = append([]string(nil), n.RPCURLs...)
	c.Factories = append([]FactoryDescriptor(nil), n.Factories...)
	c.KnownTokens = append([]TokenDescriptor(nil), n.KnownTokens...)
	return &c
}

// HasStorage reports whether the network hosts the legacy storage contract.
func (n *NetworkDescriptor) HasStorage() bool {
	return strings.TrimSpace(n.StorageAddress) != ""
}

// KnownToken looks up a well-known token by address, case-insensitively.
func (n *NetworkDescriptor) KnownToken(address string) (TokenDescriptor, bool) {
	for _, t := range n.KnownTokens {
		if strings.EqualFold(t.Address, address) {
			return t, true
		}
	}
	return TokenDescriptor{}, false
}

// CallRequest is a single read-only contract call used in batched reads.
type CallRequest struct {
	To   string
	Data []byte
}

// CallResult is the outcome of one CallRequest. Err is set per call so a failing
// entry never invalidates the rest of the batch.
type CallResult struct {
	Data []byte
	Err  error
}

// ContractReader provides read-only access to contracts on a single network.
type ContractReader interface {
	// CodeExists reports whether contract bytecode is deployed at the address.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the contract address to probe.
	//
	// Returns:
	// - bool: true if bytecode exists at the address.
	// - error: an error if the endpoint could not be queried.
	CodeExists(ctx context.Context, address string) (bool, error)

	// CallContract executes a read-only call against the latest block.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the contract address.
	// - data: ABI encoded call data.
	//
	// Returns:
	// - []byte: the raw return data.
	// - error: an error if the call fails or reverts.
	CallContract(ctx context.Context, address string, data []byte) ([]byte, error)

	// BatchCall executes several read-only calls in one round trip.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - calls: the calls to execute.
	//
	// Returns:
	// - []CallResult: one result per call, in order.
	// - error: an error if the batch as a whole could not be sent.
	BatchCall(ctx context.Context, calls []CallRequest) ([]CallResult, error)
}

// BlockReader provides block level lookups.
type BlockReader interface {
	// BlockNumber returns the latest block number.
	BlockNumber(ctx context.Context) (uint64, error)

	// BlockTimestamp returns the unix timestamp of the given block.
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Chain combines all read functionality for one network.
type Chain interface {
	ContractReader
	BlockReader

	// Descriptor returns a copy of the network descriptor.
	Descriptor() *NetworkDescriptor

	// Close releases the underlying connections.
	Close()
}

// ChainRegistry manages the chains of all configured networks.
type ChainRegistry interface {
	// Add builds a chain for the descriptor and adds it to the registry.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - descriptor: the network descriptor to add.
	//
	// Returns:
	// - error: an error if adding the chain fails.
	Add(ctx context.Context, descriptor *NetworkDescriptor) error

	// Get retrieves a chain from the registry by its chain ID, or nil.
	Get(chainID uint64) Chain

	// GetByName retrieves a chain by its network name, case-insensitively, or nil.
	GetByName(name string) Chain

	// All returns every registered chain ordered by chain ID.
	All() []Chain

	// Remove removes a chain from the registry by its chain ID and closes it.
	Remove(chainID uint64)
}
