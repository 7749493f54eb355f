package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SIGBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SIGBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── CEX ──
	setStr(&cfg.Cex.ApiKey, "SIGBOT_CEX_API_KEY")
	setStr(&cfg.Cex.ApiSecret, "SIGBOT_CEX_API_SECRET")
	setStr(&cfg.Cex.EncryptedSecretPath, "SIGBOT_CEX_ENCRYPTED_SECRET_PATH")
	setStr(&cfg.Cex.SecretPassword, "SIGBOT_CEX_SECRET_PASSWORD")
	setBool(&cfg.Cex.Testnet, "SIGBOT_CEX_TESTNET")
	setStr(&cfg.Cex.BaseURL, "SIGBOT_CEX_BASE_URL")
	setInt64(&cfg.Cex.RecvWindowMs, "SIGBOT_CEX_RECV_WINDOW_MS")

	// ── DEX ──
	setStr(&cfg.Dex.BaseURL, "SIGBOT_DEX_BASE_URL")
	setStr(&cfg.Dex.ApiKey, "SIGBOT_DEX_API_KEY")
	setInt(&cfg.Dex.ChainID, "SIGBOT_DEX_CHAIN_ID")
	setStr(&cfg.Dex.WalletAddress, "SIGBOT_DEX_WALLET_ADDRESS")
	setFloat64(&cfg.Dex.SlippagePercent, "SIGBOT_DEX_SLIPPAGE_PERCENT")

	// ── Risk ──
	setFloat64(&cfg.Risk.MinQuantity, "SIGBOT_RISK_MIN_QUANTITY")
	setFloat64(&cfg.Risk.MaxTradeNotional, "SIGBOT_RISK_MAX_TRADE_NOTIONAL")
	setFloat64(&cfg.Risk.PositionRatio, "SIGBOT_RISK_POSITION_RATIO")

	// ── Listener ──
	setBool(&cfg.Listener.Enabled, "SIGBOT_LISTENER_ENABLED")
	setStr(&cfg.Listener.RpcURL, "SIGBOT_LISTENER_RPC_URL")
	setStr(&cfg.Listener.ContractAddress, "SIGBOT_LISTENER_CONTRACT_ADDRESS")
	setDuration(&cfg.Listener.PollInterval, "SIGBOT_LISTENER_POLL_INTERVAL")
	setDuration(&cfg.Listener.ErrorBackoff, "SIGBOT_LISTENER_ERROR_BACKOFF")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "SIGBOT_FEED_ENABLED")
	setStr(&cfg.Feed.WsURL, "SIGBOT_FEED_WS_URL")
	setStringSlice(&cfg.Feed.Symbols, "SIGBOT_FEED_SYMBOLS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SIGBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SIGBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SIGBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SIGBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SIGBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SIGBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SIGBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.BalanceTTL, "SIGBOT_REDIS_BALANCE_TTL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SIGBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SIGBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SIGBOT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiKey, "SIGBOT_SERVER_API_KEY")

	// ── Top-level ──
	setStr(&cfg.Mode, "SIGBOT_MODE")
	setStr(&cfg.LogLevel, "SIGBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
