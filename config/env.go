package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvLogLevel     = "FAUCET_LOG_LEVEL"
	EnvLogFormat    = "FAUCET_LOG_FORMAT"
	EnvDatabaseDSN  = "FAUCET_DATABASE_DSN"
	EnvBackendURL   = "FAUCET_BACKEND_URL"
	EnvRPCTimeout   = "FAUCET_RPC_TIMEOUT"
	EnvSoftDeadline = "FAUCET_SOFT_DEADLINE"

	// EnvRPCPrefix followed by a chain id overrides the RPC URLs of that network,
	// e.g. FAUCET_RPC_42220=https://a,https://b.
	EnvRPCPrefix = "FAUCET_RPC_"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		cfg.Database.DSN = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.BaseURL = strings.TrimSpace(v)
	}

	if d, ok := durationEnv(EnvRPCTimeout); ok {
		cfg.RPC.CallTimeout = d
	}

	if d, ok := durationEnv(EnvSoftDeadline); ok {
		cfg.Aggregation.SoftDeadline = d
	}

	for i := range cfg.Networks {
		key := EnvRPCPrefix + strconv.FormatUint(cfg.Networks[i].ChainID, 10)
		if v := os.Getenv(key); v != "" {
			cfg.Networks[i].RPCURLs = splitList(v)
		}
	}
}

func durationEnv(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
