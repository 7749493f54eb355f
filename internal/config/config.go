// Package config defines the top-level configuration for the signal bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SIGBOT_* environment
// variables. Policy values are threaded explicitly into the pipeline's
// constructors; nothing reads this as ambient global state.
type Config struct {
	Cex      CexConfig      `toml:"cex"`
	Dex      DexConfig      `toml:"dex"`
	Risk     RiskConfig     `toml:"risk"`
	Listener ListenerConfig `toml:"listener"`
	Feed     FeedConfig     `toml:"feed"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// CexConfig holds centralized-exchange credentials and endpoints. The API
// secret comes either from api_secret directly or from an encrypted secret
// file plus password.
type CexConfig struct {
	ApiKey              string `toml:"api_key"`
	ApiSecret           string `toml:"api_secret"`
	EncryptedSecretPath string `toml:"encrypted_secret_path"`
	SecretPassword      string `toml:"secret_password"`
	Testnet             bool   `toml:"testnet"`
	BaseURL             string `toml:"base_url"`
	RecvWindowMs        int64  `toml:"recv_window_ms"`
}

// DexConfig holds DEX aggregator parameters.
type DexConfig struct {
	BaseURL         string  `toml:"base_url"`
	ApiKey          string  `toml:"api_key"`
	ChainID         int     `toml:"chain_id"`
	WalletAddress   string  `toml:"wallet_address"`
	SlippagePercent float64 `toml:"slippage_percent"`
}

// RiskConfig holds the pre-trade risk and sizing limits.
type RiskConfig struct {
	MinQuantity      float64 `toml:"min_quantity"`
	MaxTradeNotional float64 `toml:"max_trade_notional"`
	PositionRatio    float64 `toml:"position_ratio"`
}

// ListenerConfig holds the on-chain event listener parameters.
type ListenerConfig struct {
	Enabled         bool     `toml:"enabled"`
	RpcURL          string   `toml:"rpc_url"`
	ContractAddress string   `toml:"contract_address"`
	PollInterval    duration `toml:"poll_interval"`
	ErrorBackoff    duration `toml:"error_backoff"`
}

// FeedConfig holds the market-data stream parameters.
type FeedConfig struct {
	Enabled bool     `toml:"enabled"`
	WsURL   string   `toml:"ws_url"`
	Symbols []string `toml:"symbols"`
}

// RedisConfig holds Redis connection parameters for the balance and price
// caches. When disabled, balance lookups go straight to the exchange and
// the price endpoints report no data.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	BalanceTTL duration `toml:"balance_ttl"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	ApiKey      string   `toml:"api_key"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "2s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Cex: CexConfig{
			Testnet:      true,
			RecvWindowMs: 60_000,
		},
		Dex: DexConfig{
			BaseURL:         "https://api.odos.xyz",
			ChainID:         8453,
			SlippagePercent: 1.0,
		},
		Risk: RiskConfig{
			MinQuantity:      0.001,
			MaxTradeNotional: 10_000,
			PositionRatio:    0.1,
		},
		Listener: ListenerConfig{
			Enabled:      false,
			PollInterval: duration{2 * time.Second},
			ErrorBackoff: duration{5 * time.Second},
		},
		Feed: FeedConfig{
			Enabled: false,
			WsURL:   "wss://stream.binance.com:9443",
			Symbols: []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT", "SOLUSDT"},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			BalanceTTL: duration{10 * time.Second},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"service": true,
	"server":  true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: service, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// CEX: key plus one secret source.
	if c.Cex.ApiKey == "" {
		errs = append(errs, "cex: api_key must not be empty")
	}
	if c.Cex.ApiSecret == "" && c.Cex.EncryptedSecretPath == "" {
		errs = append(errs, "cex: either api_secret or encrypted_secret_path must be set")
	}
	if c.Cex.EncryptedSecretPath != "" && c.Cex.SecretPassword == "" {
		errs = append(errs, "cex: secret_password is required when encrypted_secret_path is set")
	}
	if c.Cex.RecvWindowMs < 0 {
		errs = append(errs, "cex: recv_window_ms must be >= 0")
	}

	// DEX
	if c.Dex.ChainID <= 0 {
		errs = append(errs, "dex: chain_id must be positive")
	}
	if c.Dex.WalletAddress == "" {
		errs = append(errs, "dex: wallet_address must not be empty")
	}
	if c.Dex.SlippagePercent <= 0 || c.Dex.SlippagePercent > 100 {
		errs = append(errs, fmt.Sprintf("dex: slippage_percent must be in (0, 100], got %v", c.Dex.SlippagePercent))
	}

	// Risk
	if c.Risk.MinQuantity <= 0 {
		errs = append(errs, "risk: min_quantity must be > 0")
	}
	if c.Risk.MaxTradeNotional <= 0 {
		errs = append(errs, "risk: max_trade_notional must be > 0")
	}
	if c.Risk.PositionRatio <= 0 || c.Risk.PositionRatio > 1 {
		errs = append(errs, fmt.Sprintf("risk: position_ratio must be in (0, 1], got %v", c.Risk.PositionRatio))
	}

	// Listener
	if c.Listener.Enabled {
		if c.Listener.RpcURL == "" {
			errs = append(errs, "listener: rpc_url is required when enabled")
		}
		if c.Listener.ContractAddress == "" {
			errs = append(errs, "listener: contract_address is required when enabled")
		}
		if c.Listener.PollInterval.Duration <= 0 {
			errs = append(errs, "listener: poll_interval must be > 0")
		}
	}

	// Feed
	if c.Feed.Enabled && len(c.Feed.Symbols) == 0 {
		errs = append(errs, "feed: symbols must not be empty when enabled")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
