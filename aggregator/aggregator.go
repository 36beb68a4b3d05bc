// Package aggregator coordinates a full aggregation cycle: it reads every claim
// source of the requested networks concurrently, reconciles the batches, resolves
// faucet metadata and writes the resulting view through the cache.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ClipFinance/faucet-lib/cache"
	"github.com/ClipFinance/faucet-lib/claimsource"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/ClipFinance/faucet-lib/metadata"
	"github.com/ClipFinance/faucet-lib/reconciler"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DeletedFaucetsKey is the cache key of the deleted faucet list.
const DeletedFaucetsKey = "deleted-faucets"

// DeletedFaucets lists faucets removed by their owners.
type DeletedFaucets interface {
	GetDeletedFaucets(ctx context.Context) ([]string, error)
}

// Aggregator runs aggregation cycles.
type Aggregator struct {
	registry types.ChainRegistry
	storage  claimsource.Source
	sources  []claimsource.Source
	resolver *metadata.Resolver
	layer    *cache.Layer
	deleted  DeletedFaucets
	names    *NameChecker
	logger   *logrus.Logger
	options  Options
	now      func() time.Time
}

// NewAggregator creates an aggregator.
//
// Parameters:
// - registry: the networks to aggregate.
// - layer: the cache layer receiving views.
// - resolver: the faucet metadata resolver.
// - deleted: the deleted faucet list, may be nil.
// - logger: the logger instance.
// - options: tuning, zero values use the defaults.
//
// Returns:
// - *Aggregator: a new Aggregator instance.
func NewAggregator(
	registry types.ChainRegistry,
	layer *cache.Layer,
	resolver *metadata.Resolver,
	deleted DeletedFaucets,
	logger *logrus.Logger,
	options Options,
) *Aggregator {
	options = options.withDefaults()
	return &Aggregator{
		registry: registry,
		storage:  claimsource.NewStorageSource(registry, logger),
		sources:  []claimsource.Source{claimsource.NewFactorySource(logger)},
		resolver: resolver,
		layer:    layer,
		deleted:  deleted,
		names:    NewNameChecker(options.NameCheck, logger),
		logger:   logger,
		options:  options,
		now:      time.Now,
	}
}

// ViewKey returns the cache key of the view over chainIDs.
func ViewKey(chainIDs []uint64) string {
	ids := append([]uint64(nil), chainIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return "claims:" + strings.Join(parts, ",")
}

// task is one concurrent unit of work: one source on one network.
type task struct {
	chain  types.Chain
	source claimsource.Source
}

type taskResult struct {
	index   int
	batches []types.SourceBatch
}

// Refresh runs a full aggregation cycle over chainIDs, every configured network when
// empty, and caches the resulting view. Failing networks or contracts never fail
// the cycle; they are reported as warnings on the view. When every source failed
// the cycle returns ErrEndpointUnavailable and the cached view is left untouched.
func (a *Aggregator) Refresh(ctx context.Context, chainIDs []uint64) (*types.ClaimView, error) {
	cycleID := uuid.NewString()
	logger := a.logger.WithField("cycle", cycleID)
	started := a.now()

	chains, warnings := a.resolveChains(chainIDs)
	if len(chains) == 0 {
		return nil, errors.Wrapf(commonerrors.ErrNetworkNotFound, "no configured network among %v", chainIDs)
	}

	requested := make(map[uint64]types.Chain, len(chains))
	ids := make([]uint64, 0, len(chains))
	for _, chain := range chains {
		id := chain.Descriptor().ChainID
		requested[id] = chain
		ids = append(ids, id)
	}

	batches, collectWarnings := a.collect(ctx, a.tasks(chains), logger)
	warnings = append(warnings, collectWarnings...)
	if allFailed(batches) {
		logger.WithField("batches", len(batches)).Error("Every claim source failed, keeping previous view")
		return nil, errors.Wrapf(commonerrors.ErrEndpointUnavailable, "every claim source failed for %v", ids)
	}

	records, stats := reconciler.MergeWithStats(batches)

	deleted, err := a.deletedFaucets(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to load deleted faucets")
		warnings = append(warnings, "deleted faucets unavailable, no faucet was excluded")
	}

	kept := make([]types.ClaimRecord, 0, len(records))
	touchedDeleted := make(map[string]faucetKey)
	for _, record := range records {
		if _, ok := requested[record.ChainID]; !ok {
			continue
		}
		if _, ok := deleted[strings.ToLower(record.Faucet)]; ok {
			touchedDeleted[metadata.Key(record.ChainID, record.Faucet)] = faucetKey{chainID: record.ChainID, faucet: record.Faucet}
			continue
		}
		kept = append(kept, record)
	}
	for _, faucet := range touchedDeleted {
		a.resolver.Invalidate(ctx, faucet.chainID, faucet.faucet)
	}

	kept = a.applyMetadata(ctx, requested, kept)

	view := buildView(cycleID, a.now(), ids, kept, batches, requested)
	view.Warnings = warnings

	if err := a.layer.Put(ctx, ViewKey(ids), view, a.options.ViewTTL); err != nil {
		logger.WithError(err).Error("Failed to cache claim view")
	}

	logger.WithFields(logrus.Fields{
		"networks":   len(ids),
		"batches":    len(batches),
		"input":      stats.Input,
		"duplicates": stats.Duplicates,
		"deleted":    len(touchedDeleted),
		"claims":     view.TotalClaims,
		"warnings":   len(view.Warnings),
		"duration":   a.now().Sub(started).String(),
	}).Info("Aggregation cycle finished")

	return view, nil
}

// allFailed reports whether no source produced a usable batch. Sources that found
// nothing deployed count as usable.
func allFailed(batches []types.SourceBatch) bool {
	for _, batch := range batches {
		if !batch.Failed() {
			return false
		}
	}
	return len(batches) > 0
}

// View returns the cached view over chainIDs, running a cycle when it is missing or stale.
// A stale view is served when the refresh fails.
func (a *Aggregator) View(ctx context.Context, chainIDs []uint64) (*types.ClaimView, types.Freshness, error) {
	chains, _ := a.resolveChains(chainIDs)
	if len(chains) == 0 {
		return nil, types.Missing, errors.Wrapf(commonerrors.ErrNetworkNotFound, "no configured network among %v", chainIDs)
	}
	ids := make([]uint64, 0, len(chains))
	for _, chain := range chains {
		ids = append(ids, chain.Descriptor().ChainID)
	}

	var view types.ClaimView
	freshness, err := a.layer.GetOrRefresh(ctx, ViewKey(ids), &view, a.options.ViewTTL, func(ctx context.Context) (interface{}, error) {
		return a.Refresh(ctx, ids)
	})
	if err != nil {
		return nil, freshness, err
	}
	return &view, freshness, nil
}

// CheckNameExists reports whether a faucet with the given name already exists on
// any factory of the network.
func (a *Aggregator) CheckNameExists(ctx context.Context, chainID uint64, name string) (*types.NameCheckResult, error) {
	chain := a.registry.Get(chainID)
	if chain == nil {
		return nil, errors.Wrapf(commonerrors.ErrNetworkNotFound, "chain id %d", chainID)
	}
	return a.names.Check(ctx, chain, name)
}

func (a *Aggregator) resolveChains(chainIDs []uint64) ([]types.Chain, []string) {
	if len(chainIDs) == 0 {
		return a.registry.All(), nil
	}

	var warnings []string
	seen := make(map[uint64]struct{}, len(chainIDs))
	chains := make([]types.Chain, 0, len(chainIDs))
	for _, id := range chainIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		chain := a.registry.Get(id)
		if chain == nil {
			warnings = append(warnings, fmt.Sprintf("network %d is not configured", id))
			continue
		}
		chains = append(chains, chain)
	}
	return chains, warnings
}

// tasks lists the units of work of a cycle. The storage contract holds claims of
// every network, so it is read wherever it is deployed, even on networks that were
// not requested.
func (a *Aggregator) tasks(chains []types.Chain) []task {
	var tasks []task
	for _, chain := range a.registry.All() {
		if chain.Descriptor().HasStorage() {
			tasks = append(tasks, task{chain: chain, source: a.storage})
		}
	}
	for _, chain := range chains {
		for _, source := range a.sources {
			tasks = append(tasks, task{chain: chain, source: source})
		}
	}
	return tasks
}

// collect runs every task concurrently and waits for them until the soft deadline.
// Tasks still running at the deadline are recorded as failed batches.
func (a *Aggregator) collect(ctx context.Context, tasks []task, logger *logrus.Entry) ([]types.SourceBatch, []string) {
	collectCtx, cancel := context.WithTimeout(ctx, a.options.SoftDeadline)
	defer cancel()

	results := make(chan taskResult, len(tasks))
	for i, t := range tasks {
		go func(i int, t task) {
			results <- taskResult{index: i, batches: t.source.Fetch(collectCtx, t.chain)}
		}(i, t)
	}

	done := make([]bool, len(tasks))
	var batches []types.SourceBatch

wait:
	for range tasks {
		select {
		case res := <-results:
			done[res.index] = true
			batches = append(batches, res.batches...)
		case <-collectCtx.Done():
			break wait
		}
	}

	var warnings []string
	for i, t := range tasks {
		descriptor := t.chain.Descriptor()
		if !done[i] {
			logger.WithFields(logrus.Fields{
				"chain":  descriptor.Name,
				"source": t.source.Kind(),
			}).Warn("Source did not finish before the deadline")
			batches = append(batches, types.SourceBatch{
				Source:  t.source.Kind(),
				ChainID: descriptor.ChainID,
				Err:     errors.Wrap(commonerrors.ErrEndpointUnavailable, "deadline exceeded"),
			})
			warnings = append(warnings, fmt.Sprintf("%s %s source timed out", descriptor.Name, t.source.Kind()))
		}
	}

	for _, batch := range batches {
		if batch.Failed() && batch.Origin != "" {
			warnings = append(warnings, fmt.Sprintf("%s %s on chain %d unavailable: %v", batch.Source, batch.Origin, batch.ChainID, batch.Err))
		}
	}
	sort.Strings(warnings)

	return batches, warnings
}

// deletedFaucets returns the set of deleted faucet addresses through the cache.
func (a *Aggregator) deletedFaucets(ctx context.Context) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if a.deleted == nil {
		return set, nil
	}

	var addresses []string
	_, err := a.layer.GetOrRefresh(ctx, DeletedFaucetsKey, &addresses, a.options.DeletedTTL, func(ctx context.Context) (interface{}, error) {
		return a.deleted.GetDeletedFaucets(ctx)
	})
	if err != nil {
		return set, err
	}

	for _, address := range addresses {
		if normalized := utils.NormalizeAddress(address); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set, nil
}

type faucetKey struct {
	chainID uint64
	faucet  string
}

// applyMetadata resolves every unique faucet once and returns annotated copies of the records.
func (a *Aggregator) applyMetadata(ctx context.Context, chains map[uint64]types.Chain, records []types.ClaimRecord) []types.ClaimRecord {
	native := make(map[faucetKey]bool)
	for _, record := range records {
		key := faucetKey{chainID: record.ChainID, faucet: strings.ToLower(record.Faucet)}
		native[key] = native[key] || record.Native
	}

	var mu sync.Mutex
	resolved := make(map[faucetKey]types.FaucetMetadata, len(native))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.options.MetadataConcurrency)
	for key, isNative := range native {
		key, isNative := key, isNative
		g.Go(func() error {
			meta := a.resolver.Resolve(gctx, metadata.Request{
				Chain:  chains[key.chainID],
				Faucet: key.faucet,
				Native: isNative,
			})
			mu.Lock()
			resolved[key] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]types.ClaimRecord, len(records))
	for i, record := range records {
		out[i] = record.WithMetadata(resolved[faucetKey{chainID: record.ChainID, faucet: strings.ToLower(record.Faucet)}])
	}
	return out
}
