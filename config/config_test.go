package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	commonerrors "github.com/ClipFinance/faucet-lib/common/errors"
	"github.com/ClipFinance/faucet-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
networks:
  - chain_id: 42220
    name: Celo
    chain_type: evm
    rpc_urls:
      - https://forno.celo.org
    storage_address: "0x1111111111111111111111111111111111111111"
    factories:
      - address: "0x2222222222222222222222222222222222222222"
        type: DropList
    native_token:
      symbol: CELO
      decimals: 18
rpc:
  call_timeout: 3s
aggregation:
  soft_deadline: 20s
  name_check:
    batch_size: 4
logging:
  level: debug
  format: json
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Networks, 4)

	celo, ok := cfg.Network(42220)
	require.True(t, ok)
	assert.Equal(t, "Celo", celo.Name)
	token, ok := celo.KnownToken("0x765de816845861e75a25fca122bb6898b8b1282a")
	require.True(t, ok)
	assert.Equal(t, "cUSD", token.Symbol)

	_, ok = cfg.Network(1)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Networks, 1)
	network := cfg.Networks[0]
	assert.Equal(t, types.EVM, network.ChainType)
	assert.Equal(t, types.FactoryDropList, network.Factories[0].Type)
	assert.True(t, network.HasStorage())

	assert.Equal(t, 3*time.Second, cfg.RPC.CallTimeout)
	assert.Equal(t, 10.0, cfg.RPC.RequestsPerSecond)
	assert.Equal(t, 20*time.Second, cfg.AggregatorOptions().SoftDeadline)
	assert.Equal(t, 4, cfg.AggregatorOptions().NameCheck.BatchSize)
	assert.Equal(t, 200*time.Millisecond, cfg.AggregatorOptions().NameCheck.BatchDelay)
	assert.Equal(t, 3*time.Second, cfg.EVMOptions().CallTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvRPCTimeout, "7s")
	t.Setenv(EnvSoftDeadline, "not-a-duration")
	t.Setenv(EnvDatabaseDSN, "postgres://localhost/faucets")
	t.Setenv(EnvBackendURL, "https://api.example.org")
	t.Setenv(EnvRPCPrefix+"8453", "https://a.example.org, https://b.example.org")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 7*time.Second, cfg.RPC.CallTimeout)
	assert.Equal(t, 45*time.Second, cfg.Aggregation.SoftDeadline)
	assert.Equal(t, "postgres://localhost/faucets", cfg.Database.DSN)
	assert.Equal(t, "https://api.example.org", cfg.Backend.BaseURL)

	base, ok := cfg.Network(8453)
	require.True(t, ok)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, base.RPCURLs)
}

func TestValidateRejectsBadNetworks(t *testing.T) {
	t.Parallel()

	cases := map[string]func(cfg *Config){
		"duplicate chain id": func(cfg *Config) { cfg.Networks[1].ChainID = cfg.Networks[0].ChainID },
		"duplicate name":     func(cfg *Config) { cfg.Networks[1].Name = "CELO" },
		"no rpc":             func(cfg *Config) { cfg.Networks[0].RPCURLs = nil },
		"bad factory": func(cfg *Config) {
			cfg.Networks[0].Factories = []types.FactoryDescriptor{{Address: "0x123"}}
		},
		"bad decimals": func(cfg *Config) { cfg.Networks[0].KnownTokens[0].Decimals = 40 },
		"bad type":     func(cfg *Config) { cfg.Networks[0].ChainType = "SVM" },
		"no networks":  func(cfg *Config) { cfg.Networks = nil },
	}

	for name, mutate := range cases {
		cfg := Defaults()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}

	cfg := Defaults()
	cfg.Networks[0].RPCURLs = nil
	assert.True(t, errors.Is(cfg.Validate(), commonerrors.ErrNoEndpointsAvailable))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, err = NewLogger(LoggingConfig{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	_, err = NewLogger(LoggingConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LoggingConfig{Format: "xml"})
	assert.Error(t, err)
}
