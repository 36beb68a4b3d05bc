// Package reconciler merges independently sourced claim batches into one canonical,
// deduplicated claim history.
package reconciler

import (
	"sort"

	"github.com/ClipFinance/faucet-lib/common/types"
)

// Stats describes the outcome of a merge.
type Stats struct {
	Input      int
	Output     int
	Duplicates int
}

// Merge reconciles batches into a canonical list sorted by timestamp descending.
//
// Batches are merged in a fixed order: storage before factory, then by chain id and
// origin contract, so the result does not depend on which task finished first. The
// first record seen for an identity key wins; later records with the same key are
// dropped even when their fields differ. A record without a transaction hash is also
// dropped when an earlier record shares its claimer, faucet and timestamp.
//
// Failed batches contribute nothing. The input is never modified.
func Merge(batches []types.SourceBatch) []types.ClaimRecord {
	records, _ := MergeWithStats(batches)
	return records
}

// MergeWithStats is Merge that also reports how many records were dropped as duplicates.
func MergeWithStats(batches []types.SourceBatch) ([]types.ClaimRecord, Stats) {
	ordered := make([]types.SourceBatch, 0, len(batches))
	for _, b := range batches {
		if !b.Failed() {
			ordered = append(ordered, b)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Source.Priority() != b.Source.Priority() {
			return a.Source.Priority() < b.Source.Priority()
		}
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		return a.Origin < b.Origin
	})

	var stats Stats
	identities := make(map[string]struct{})
	composites := make(map[string]struct{})
	out := make([]types.ClaimRecord, 0)

	for _, batch := range ordered {
		for _, record := range batch.Records {
			stats.Input++

			key, isHash := record.IdentityKey()
			composite := record.CompositeKey()

			if _, seen := identities[key]; seen {
				stats.Duplicates++
				continue
			}
			if !isHash {
				if _, seen := composites[composite]; seen {
					stats.Duplicates++
					continue
				}
			}

			identities[key] = struct{}{}
			composites[composite] = struct{}{}
			out = append(out, record)
		}
	}

	SortClaims(out)
	stats.Output = len(out)
	return out, stats
}

// SortClaims sorts records by timestamp descending, breaking ties by identity key.
func SortClaims(records []types.ClaimRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		ki, _ := records[i].IdentityKey()
		kj, _ := records[j].IdentityKey()
		return ki < kj
	})
}
