package types

import "time"

// NetworkSummary aggregates claims of one network.
type NetworkSummary struct {
	ChainID uint64 `json:"chainId"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	Claims  int    `json:"claims"`
	Faucets int    `json:"faucets"`
	Failed  bool   `json:"failed"`
}

// FaucetSummary aggregates claims of one faucet. TotalAmount is an exact decimal
// string of base units; FormattedAmount applies the token decimals.
type FaucetSummary struct {
	ChainID         uint64 `json:"chainId"`
	Faucet          string `json:"faucet"`
	Name            string `json:"name"`
	TokenSymbol     string `json:"tokenSymbol"`
	Claims          int    `json:"claims"`
	UniqueClaimers  int    `json:"uniqueClaimers"`
	TotalAmount     string `json:"totalAmount"`
	FormattedAmount string `json:"formattedAmount"`
	LastClaimAt     uint64 `json:"lastClaimAt"`
}

// ClaimView is the canonical, cached result of one aggregation cycle.
//
// Fields:
// - CycleID: identifier of the aggregation cycle that produced the view.
// - GeneratedAt: when the cycle finished.
// - ChainIDs: the networks the view was requested for.
// - Claims: deduplicated claims sorted by timestamp descending.
// - TotalClaims: number of claims.
// - UniqueClaimers: number of distinct claimer addresses.
// - Networks: per network summary.
// - Faucets: per faucet summary.
// - Warnings: non fatal problems met during the cycle.
type ClaimView struct {
	CycleID        string           `json:"cycleId"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	ChainIDs       []uint64         `json:"chainIds"`
	Claims         []ClaimRecord    `json:"claims"`
	TotalClaims    int              `json:"totalClaims"`
	UniqueClaimers int              `json:"uniqueClaimers"`
	Networks       []NetworkSummary `json:"networks"`
	Faucets        []FaucetSummary  `json:"faucets"`
	Warnings       []string         `json:"warnings,omitempty"`
}

// NameCheckResult is the outcome of a faucet name availability check.
//
// Fields:
// - Exists: true if a faucet with the same name was found.
// - ChainID: the network that was checked.
// - Factory: the factory holding the conflicting faucet.
// - Faucet: the conflicting faucet address.
// - ExistingName: the name as stored on chain.
// - Partial: true if at least one factory was only sampled or could not be read.
// - Warnings: human readable notes about partial validation.
type NameCheckResult struct {
	Exists       bool     `json:"exists"`
	ChainID      uint64   `json:"chainId"`
	Factory      string   `json:"factory,omitempty"`
	Faucet       string   `json:"faucet,omitempty"`
	ExistingName string   `json:"existingName,omitempty"`
	Partial      bool     `json:"partial"`
	Warnings     []string `json:"warnings,omitempty"`
}
