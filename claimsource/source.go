// Package claimsource reads raw claim history from on-chain contracts. Every source
// turns each contract it reads into exactly one types.SourceBatch, so a failing
// contract never affects the others.
package claimsource

import (
	"context"
	"strings"

	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/sirupsen/logrus"
)

// Source reads claim records for one network.
type Source interface {
	// Kind returns the kind of records the source produces.
	Kind() types.SourceKind
	// Fetch reads every contract the source knows on the chain. It never returns an
	// error, failures are carried by the batches.
	Fetch(ctx context.Context, chain types.Chain) []types.SourceBatch
}

// adminPrefixes lists transaction types that configure a faucet rather than distribute
// from it, even when their name contains "claim".
var adminPrefixes = []string{
	"set",
	"update",
	"reset",
	"toggle",
	"enable",
	"disable",
	"configure",
	"withdraw",
	"add",
	"remove",
}

// IsClaimTransaction reports whether a factory transaction type describes a claim.
// Types such as "setClaimParameters" contain the word but are administrative calls.
func IsClaimTransaction(transactionType string) bool {
	t := strings.ToLower(strings.TrimSpace(transactionType))
	if !strings.Contains(t, "claim") {
		return false
	}
	for _, prefix := range adminPrefixes {
		if strings.HasPrefix(t, prefix) {
			return false
		}
	}
	return true
}

// probe checks that the contract is deployed. A missing contract yields an empty
// batch and is not worth a warning.
func probe(
	ctx context.Context,
	chain types.Chain,
	batch *types.SourceBatch,
	logger *logrus.Entry,
) bool {
	exists, err := chain.CodeExists(ctx, batch.Origin)
	if err != nil {
		batch.Err = err
		logger.WithError(err).Warn("Failed to probe contract code")
		return false
	}
	if !exists {
		logger.Debug("Contract not deployed, skipping")
		return false
	}
	return true
}
