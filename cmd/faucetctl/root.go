package main

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/ClipFinance/faucet-lib/aggregator"
	"github.com/ClipFinance/faucet-lib/backend"
	"github.com/ClipFinance/faucet-lib/cache"
	"github.com/ClipFinance/faucet-lib/chainmanager"
	"github.com/ClipFinance/faucet-lib/chains"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/config"
	"github.com/ClipFinance/faucet-lib/dbconfig"
	"github.com/ClipFinance/faucet-lib/metadata"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// globalFlags are the flags shared by every command.
type globalFlags struct {
	configPath string
	networks   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "faucetctl",
		Short: "Aggregate faucet claims across networks",
		Long: `faucetctl reads faucet claim history from the storage and factory contracts
of every configured network, reconciles it and prints the result as JSON.

Example:
  faucetctl refresh --networks 42220,8453
  faucetctl view
  faucetctl check-name --chain 42220 "Celo Builders"
  faucetctl metadata resolve --chain 42220 0x...`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVarP(&flags.networks, "networks", "n", "", "comma separated chain ids, all networks when empty")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newRefreshCmd(flags),
		newViewCmd(flags),
		newCheckNameCmd(flags),
		newMetadataCmd(flags),
		newNetworksCmd(flags),
	)

	return root
}

// engine holds every component built from the configuration.
type engine struct {
	cfg        *config.Config
	logger     *logrus.Logger
	db         *dbconfig.DBConfig
	registry   types.ChainRegistry
	layer      *cache.Layer
	resolver   *metadata.Resolver
	backend    *backend.Client
	aggregator *aggregator.Aggregator
}

// newEngine loads the configuration and wires the aggregation components.
func newEngine(ctx context.Context, flags *globalFlags) (*engine, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	e := &engine{cfg: cfg, logger: logger}

	var shared cache.Tier
	descriptors := cfg.Networks
	if cfg.Database.DSN != "" {
		e.db, err = dbconfig.NewDBConfig(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := e.db.EnsureCacheSchema(ctx); err != nil {
			e.close()
			return nil, err
		}
		shared = e.db.NewCacheTier()

		if cfg.Database.NetworkDirectory {
			descriptors, err = e.db.GetNetworks(ctx, logger)
			if err != nil {
				e.close()
				return nil, err
			}
		}
	} else if cfg.Database.NetworkDirectory {
		return nil, errors.New("network directory requires a database dsn")
	}

	e.registry = chainmanager.NewChainRegistryFromDescriptors(ctx, chains.NewChainFactory(cfg.EVMOptions()), descriptors, logger)

	var opts []cache.Option
	if cfg.Cache.BackgroundRefresh {
		opts = append(opts, cache.WithBackgroundRefresh())
	}
	e.layer = cache.NewLayer(cache.NewLocalTier(), shared, logger, opts...)
	e.resolver = metadata.NewResolver(e.layer, logger)

	var deleted aggregator.DeletedFaucets
	if cfg.Backend.BaseURL != "" {
		e.backend, err = backend.NewClient(cfg.Backend.BaseURL, nil)
		if err != nil {
			e.close()
			return nil, err
		}
		deleted = e.backend
	}

	e.aggregator = aggregator.NewAggregator(e.registry, e.layer, e.resolver, deleted, logger, cfg.AggregatorOptions())
	return e, nil
}

func (e *engine) close() {
	if e.registry != nil {
		for _, chain := range e.registry.All() {
			e.registry.Remove(chain.Descriptor().ChainID)
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close database")
		}
	}
}

// chain returns the registered chain with the given id.
func (e *engine) chain(chainID uint64) (types.Chain, error) {
	chain := e.registry.Get(chainID)
	if chain == nil {
		return nil, errors.Errorf("network %d is not configured", chainID)
	}
	return chain, nil
}

// withEngine builds the engine, runs fn and releases the engine's resources.
func withEngine(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, e *engine) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(ctx, flags)
	if err != nil {
		return err
	}
	defer e.close()

	return fn(ctx, e)
}

// parseChainIDs parses a comma separated chain id list.
func parseChainIDs(s string) ([]uint64, error) {
	var ids []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.Errorf("invalid chain id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	return nil
}

func requireChain(chainID uint64) error {
	if chainID == 0 {
		return errors.New("--chain is required")
	}
	return nil
}
