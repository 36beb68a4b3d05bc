// Package config loads the engine configuration from YAML, environment variables
// and built-in defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/ClipFinance/faucet-lib/aggregator"
	"github.com/ClipFinance/faucet-lib/chains/evm"
	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration.
type Config struct {
	Networks    []types.NetworkDescriptor `yaml:"networks"`
	RPC         RPCConfig                 `yaml:"rpc"`
	Aggregation AggregationConfig         `yaml:"aggregation"`
	Cache       CacheConfig               `yaml:"cache"`
	Database    DatabaseConfig            `yaml:"database"`
	Backend     BackendConfig             `yaml:"backend"`
	Logging     LoggingConfig             `yaml:"logging"`
}

// RPCConfig defines RPC call settings shared by every network.
type RPCConfig struct {
	CallTimeout       time.Duration `yaml:"call_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MonitorInterval   time.Duration `yaml:"monitor_interval"`
}

// AggregationConfig defines aggregation cycle settings.
type AggregationConfig struct {
	SoftDeadline        time.Duration   `yaml:"soft_deadline"`
	MetadataConcurrency int             `yaml:"metadata_concurrency"`
	ViewTTL             time.Duration   `yaml:"view_ttl"`
	DeletedTTL          time.Duration   `yaml:"deleted_ttl"`
	NameCheck           NameCheckConfig `yaml:"name_check"`
}

// NameCheckConfig defines name existence check settings.
type NameCheckConfig struct {
	BatchSize       int           `yaml:"batch_size"`
	BatchDelay      time.Duration `yaml:"batch_delay"`
	SampleThreshold int           `yaml:"sample_threshold"`
	SampleSize      int           `yaml:"sample_size"`
}

// CacheConfig defines cache settings.
type CacheConfig struct {
	BackgroundRefresh bool `yaml:"background_refresh"`
}

// DatabaseConfig defines the optional Postgres connection. When DSN is set the
// database backs the shared cache tier; NetworkDirectory additionally loads the
// networks from it instead of the configuration file.
type DatabaseConfig struct {
	DSN              string `yaml:"dsn"`
	NetworkDirectory bool   `yaml:"network_directory"`
}

// BackendConfig defines the registration service.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from the specified file, applies environment overrides
// and validates the result. An empty path loads the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		// #nosec G304 -- config file path is provided by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	ApplyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the network descriptors. Addresses are normalized in place.
func (c *Config) Validate() error {
	if len(c.Networks) == 0 && !c.Database.NetworkDirectory {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "no networks configured")
	}

	ids := make(map[uint64]struct{}, len(c.Networks))
	names := make(map[string]struct{}, len(c.Networks))
	for i := range c.Networks {
		n := &c.Networks[i]

		if n.ChainID == 0 {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "network %q has no chain id", n.Name)
		}
		if _, ok := ids[n.ChainID]; ok {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "duplicate chain id %d", n.ChainID)
		}
		ids[n.ChainID] = struct{}{}

		name := strings.ToLower(strings.TrimSpace(n.Name))
		if name == "" {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "network %d has no name", n.ChainID)
		}
		if _, ok := names[name]; ok {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "duplicate network name %q", n.Name)
		}
		names[name] = struct{}{}

		if n.ChainType = types.ParseChainType(string(n.ChainType)); n.ChainType == types.UNKNOWN {
			return errors.Wrapf(commonerrors.ErrInvalidChainType, "network %s", n.Name)
		}
		if len(n.RPCURLs) == 0 {
			return errors.Wrapf(commonerrors.ErrNoEndpointsAvailable, "network %s", n.Name)
		}

		if n.StorageAddress != "" {
			if n.StorageAddress = utils.NormalizeAddress(n.StorageAddress); n.StorageAddress == "" {
				return errors.Wrapf(commonerrors.ErrInvalidConfig, "network %s: invalid storage address", n.Name)
			}
		}
		for j := range n.Factories {
			f := &n.Factories[j]
			if f.Address = utils.NormalizeAddress(f.Address); f.Address == "" {
				return errors.Wrapf(commonerrors.ErrInvalidConfig, "network %s: invalid factory address", n.Name)
			}
			f.Type = types.ParseFactoryType(string(f.Type))
		}
		for j := range n.KnownTokens {
			t := &n.KnownTokens[j]
			if t.Address = utils.NormalizeAddress(t.Address); t.Address == "" {
				return errors.Wrapf(commonerrors.ErrInvalidConfig, "network %s: invalid address of token %s", n.Name, t.Symbol)
			}
			if !utils.ValidDecimals(int(t.Decimals)) {
				return errors.Wrapf(commonerrors.ErrInvalidConfig, "network %s: token %s decimals out of range", n.Name, t.Symbol)
			}
		}
	}

	return nil
}

// EVMOptions returns the call options of EVM chains.
func (c *Config) EVMOptions() evm.Options {
	return evm.Options{
		CallTimeout:       c.RPC.CallTimeout,
		RequestsPerSecond: c.RPC.RequestsPerSecond,
		Burst:             c.RPC.Burst,
		MonitorInterval:   c.RPC.MonitorInterval,
	}
}

// AggregatorOptions returns the aggregator settings.
func (c *Config) AggregatorOptions() aggregator.Options {
	return aggregator.Options{
		SoftDeadline:        c.Aggregation.SoftDeadline,
		MetadataConcurrency: c.Aggregation.MetadataConcurrency,
		ViewTTL:             c.Aggregation.ViewTTL,
		DeletedTTL:          c.Aggregation.DeletedTTL,
		NameCheck: aggregator.NameCheckOptions{
			BatchSize:       c.Aggregation.NameCheck.BatchSize,
			BatchDelay:      c.Aggregation.NameCheck.BatchDelay,
			SampleThreshold: c.Aggregation.NameCheck.SampleThreshold,
			SampleSize:      c.Aggregation.NameCheck.SampleSize,
		},
	}
}

// Network returns the configured network with the given chain id.
func (c *Config) Network(chainID uint64) (types.NetworkDescriptor, bool) {
	for _, n := range c.Networks {
		if n.ChainID == chainID {
			return *n.Clone(), true
		}
	}
	return types.NetworkDescriptor{}, false
}
