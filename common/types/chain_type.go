package types

import "strings"

// ChainType represents supported blockchain types
type ChainType string

const (
	// EVM represents Ethereum Virtual Machine based chains (e.g. Celo, Lisk, Base, Arbitrum).
	EVM ChainType = "EVM"
	// UNKNOWN represents unknown or unsupported chain type in the system.
	UNKNOWN ChainType = "UNKNOWN"
)

// String converts ChainType to string representation
func (t ChainType) String() string {
	return string(t)
}

// ParseChainType converts string to ChainType representation.
// An empty string is treated as EVM since every faucet network is EVM compatible.
func ParseChainType(s string) ChainType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", EVM.String():
		return EVM
	default:
		return UNKNOWN
	}
}

// FactoryType identifies which family of faucets a factory deploys.
type FactoryType string

const (
	// FactoryDropCode deploys open faucets gated by a drop code.
	FactoryDropCode FactoryType = "dropcode"
	// FactoryDropList deploys whitelisted faucets.
	FactoryDropList FactoryType = "droplist"
	// FactoryCustom deploys faucets with per-user custom amounts.
	FactoryCustom FactoryType = "custom"
)

// String converts FactoryType to string representation.
func (t FactoryType) String() string {
	return string(t)
}

// ParseFactoryType converts string to FactoryType. Unknown values fall back to dropcode,
// the original factory shape.
func ParseFactoryType(s string) FactoryType {
	switch FactoryType(strings.ToLower(strings.TrimSpace(s))) {
	case FactoryDropList:
		return FactoryDropList
	case FactoryCustom:
		return FactoryCustom
	default:
		return FactoryDropCode
	}
}
