package types

// ResolutionSource records which strategy produced a FaucetMetadata value.
type ResolutionSource string

const (
	// ResolvedLive means the value was read from the faucet contract.
	ResolvedLive ResolutionSource = "live"
	// ResolvedCache means the value came from a previously persisted entry.
	ResolvedCache ResolutionSource = "cache"
	// ResolvedNative means the value was derived from the network's native asset.
	ResolvedNative ResolutionSource = "native"
	// ResolvedPlaceholder means every other strategy failed.
	ResolvedPlaceholder ResolutionSource = "placeholder"
)

// Placeholder token values used when a token can not be resolved.
const (
	PlaceholderTokenSymbol   = "TOKEN"
	PlaceholderTokenDecimals = 18
)

// FaucetMetadata holds the human readable description of a faucet.
//
// Fields:
// - ChainID: the chain the faucet lives on.
// - Faucet: the faucet contract address.
// - Name: the display name of the faucet.
// - Variant: the contract shape the name was read with, if read live.
// - TokenAddress: the distributed token, empty for the native asset.
// - TokenSymbol: the token symbol.
// - TokenDecimals: the token decimals.
// - Native: true if the faucet distributes the native asset.
// - Source: the strategy that produced the value.
type FaucetMetadata struct {
	ChainID       uint64           `json:"chainId"`
	Faucet        string           `json:"faucet"`
	Name          string           `json:"name"`
	Variant       string           `json:"variant,omitempty"`
	TokenAddress  string           `json:"tokenAddress,omitempty"`
	TokenSymbol   string           `json:"tokenSymbol"`
	TokenDecimals uint8            `json:"tokenDecimals"`
	Native        bool             `json:"isEther"`
	Source        ResolutionSource `json:"source"`
}
