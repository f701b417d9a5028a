// Package config loads service configuration from environment variables.
// All required fields are validated at startup so the service fails fast.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chainflow/txverify/types"
	"github.com/chainflow/txverify/utils"
)

// Config holds all service configuration.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Ledger configuration
	Network types.Network
	RPCURL  string

	// Token contracts whose balances the wallet endpoints report,
	// e.g. the USDT and USDC contracts of the configured network.
	TokenContracts []string

	// Per-request timeout for ledger access.
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables and validates all
// required fields. Errors are collected and reported together.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.Network = types.Network(getEnvOrDefault("NETWORK", types.NetworkBSCTestnet.String()))
	if !cfg.Network.IsKnown() {
		errs = append(errs, fmt.Errorf("NETWORK %q is not a supported network", cfg.Network))
	}

	cfg.RPCURL = os.Getenv("RPC_URL")
	if cfg.RPCURL == "" {
		errs = append(errs, fmt.Errorf("RPC_URL is required"))
	}

	if raw := os.Getenv("TOKEN_CONTRACTS"); raw != "" {
		for _, addr := range strings.Split(raw, ",") {
			addr = strings.TrimSpace(addr)
			if addr == "" {
				continue
			}
			if err := utils.ValidateAddress(addr); err != nil {
				errs = append(errs, fmt.Errorf("TOKEN_CONTRACTS entry %q: %w", addr, err))
				continue
			}
			cfg.TokenContracts = append(cfg.TokenContracts, addr)
		}
	}

	cfg.RequestTimeout = 30 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT %q: %w", raw, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive"))
		} else {
			cfg.RequestTimeout = d
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
