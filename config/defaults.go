package config

import (
	"time"

	"github.com/ClipFinance/faucet-lib/common/types"
)

// Defaults returns the built-in configuration. Factory and storage addresses are
// deployment specific and come from the configuration file or the database.
func Defaults() *Config {
	return &Config{
		Networks: DefaultNetworks(),
		RPC: RPCConfig{
			CallTimeout:       10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
			MonitorInterval:   30 * time.Second,
		},
		Aggregation: AggregationConfig{
			SoftDeadline:        45 * time.Second,
			MetadataConcurrency: 8,
			ViewTTL:             5 * time.Minute,
			DeletedTTL:          5 * time.Minute,
			NameCheck: NameCheckConfig{
				BatchSize:       5,
				BatchDelay:      200 * time.Millisecond,
				SampleThreshold: 50,
				SampleSize:      20,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultNetworks returns the supported networks.
func DefaultNetworks() []types.NetworkDescriptor {
	return []types.NetworkDescriptor{
		{
			ChainID:     42220,
			Name:        "Celo",
			ChainType:   types.EVM,
			RPCURLs:     []string{"https://forno.celo.org", "https://rpc.ankr.com/celo"},
			Color:       "#35D07F",
			NativeToken: types.TokenDescriptor{Symbol: "CELO", Decimals: 18},
			KnownTokens: []types.TokenDescriptor{
				{Address: "0x765DE816845861e75A25fCA122bb6898B8B1282a", Symbol: "cUSD", Decimals: 18},
			},
		},
		{
			ChainID:     1135,
			Name:        "Lisk",
			ChainType:   types.EVM,
			RPCURLs:     []string{"https://rpc.api.lisk.com"},
			Color:       "#4070F4",
			NativeToken: types.TokenDescriptor{Symbol: "ETH", Decimals: 18},
		},
		{
			ChainID:     42161,
			Name:        "Arbitrum",
			ChainType:   types.EVM,
			RPCURLs:     []string{"https://arb1.arbitrum.io/rpc"},
			Color:       "#28A0F0",
			NativeToken: types.TokenDescriptor{Symbol: "ETH", Decimals: 18},
			KnownTokens: []types.TokenDescriptor{
				{Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Symbol: "USDC", Decimals: 6},
			},
		},
		{
			ChainID:     8453,
			Name:        "Base",
			ChainType:   types.EVM,
			RPCURLs:     []string{"https://mainnet.base.org"},
			Color:       "#0052FF",
			NativeToken: types.TokenDescriptor{Symbol: "ETH", Decimals: 18},
			KnownTokens: []types.TokenDescriptor{
				{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Decimals: 6},
			},
		},
	}
}
