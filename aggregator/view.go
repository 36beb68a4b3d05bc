package aggregator

import (
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
)

type faucetStats struct {
	summary  types.FaucetSummary
	total    *big.Int
	decimals uint8
	claimers map[string]struct{}
}

// buildView assembles the view and its statistics. Records are already sorted.
func buildView(
	cycleID string,
	now time.Time,
	chainIDs []uint64,
	records []types.ClaimRecord,
	batches []types.SourceBatch,
	chains map[uint64]types.Chain,
) *types.ClaimView {
	view := &types.ClaimView{
		CycleID:     cycleID,
		GeneratedAt: now.UTC(),
		ChainIDs:    append([]uint64(nil), chainIDs...),
		Claims:      records,
		TotalClaims: len(records),
	}
	sort.Slice(view.ChainIDs, func(i, j int) bool { return view.ChainIDs[i] < view.ChainIDs[j] })

	failed := make(map[uint64]bool)
	for _, batch := range batches {
		if batch.Failed() {
			failed[batch.ChainID] = true
		}
	}

	claimers := make(map[string]struct{})
	networks := make(map[uint64]*types.NetworkSummary)
	networkFaucets := make(map[uint64]map[string]struct{})
	faucets := make(map[faucetKey]*faucetStats)

	for _, id := range view.ChainIDs {
		descriptor := chains[id].Descriptor()
		networks[id] = &types.NetworkSummary{
			ChainID: id,
			Name:    descriptor.Name,
			Color:   descriptor.Color,
			Failed:  failed[id],
		}
		networkFaucets[id] = make(map[string]struct{})
	}

	for _, record := range records {
		claimer := strings.ToLower(record.Claimer)
		faucet := strings.ToLower(record.Faucet)
		claimers[claimer] = struct{}{}

		if network, ok := networks[record.ChainID]; ok {
			network.Claims++
			networkFaucets[record.ChainID][faucet] = struct{}{}
		}

		key := faucetKey{chainID: record.ChainID, faucet: faucet}
		stats, ok := faucets[key]
		if !ok {
			stats = &faucetStats{
				summary: types.FaucetSummary{
					ChainID:     record.ChainID,
					Faucet:      faucet,
					Name:        record.FaucetName,
					TokenSymbol: record.TokenSymbol,
				},
				total:    new(big.Int),
				decimals: record.TokenDecimals,
				claimers: make(map[string]struct{}),
			}
			faucets[key] = stats
		}

		stats.summary.Claims++
		if record.Amount != nil {
			stats.total.Add(stats.total, record.Amount)
		}
		stats.claimers[claimer] = struct{}{}
		if record.Timestamp > stats.summary.LastClaimAt {
			stats.summary.LastClaimAt = record.Timestamp
		}
	}

	view.UniqueClaimers = len(claimers)

	for _, id := range view.ChainIDs {
		network := networks[id]
		network.Faucets = len(networkFaucets[id])
		view.Networks = append(view.Networks, *network)
	}

	for _, stats := range faucets {
		stats.summary.UniqueClaimers = len(stats.claimers)
		stats.summary.TotalAmount = stats.total.String()
		stats.summary.FormattedAmount = utils.FormatUnits(stats.total, stats.decimals)
		view.Faucets = append(view.Faucets, stats.summary)
	}
	sort.Slice(view.Faucets, func(i, j int) bool {
		a, b := view.Faucets[i], view.Faucets[j]
		if a.Claims != b.Claims {
			return a.Claims > b.Claims
		}
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		return a.Faucet < b.Faucet
	})

	return view
}
