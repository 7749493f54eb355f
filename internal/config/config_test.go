package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns Defaults plus the required credential fields.
func validConfig() Config {
	cfg := Defaults()
	cfg.Cex.ApiKey = "key"
	cfg.Cex.ApiSecret = "secret"
	cfg.Dex.WalletAddress = "0x1111111111111111111111111111111111111111"
	return cfg
}

func TestDefaultsWithCredentialsValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "bogus"
	cfg.Cex.ApiKey = ""
	cfg.Risk.MinQuantity = 0
	cfg.Dex.SlippagePercent = 150

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unknown mode")
	assert.Contains(t, msg, "api_key")
	assert.Contains(t, msg, "min_quantity")
	assert.Contains(t, msg, "slippage_percent")
}

func TestValidateSecretSources(t *testing.T) {
	cfg := validConfig()
	cfg.Cex.ApiSecret = ""
	require.Error(t, cfg.Validate())

	cfg.Cex.EncryptedSecretPath = "/etc/signalbot/secret.json"
	require.Error(t, cfg.Validate(), "encrypted path without password must fail")

	cfg.Cex.SecretPassword = "pw"
	assert.NoError(t, cfg.Validate())
}

func TestValidateListenerRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Listener.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
	assert.Contains(t, err.Error(), "contract_address")

	cfg.Listener.RpcURL = "wss://rpc.example"
	cfg.Listener.ContractAddress = "0x2222222222222222222222222222222222222222"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "server"

[cex]
api_key = "file-key"
api_secret = "file-secret"
testnet = false

[dex]
wallet_address = "0x3333333333333333333333333333333333333333"

[listener]
poll_interval = "3s"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "file-key", cfg.Cex.ApiKey)
	assert.False(t, cfg.Cex.Testnet)
	assert.Equal(t, 3*time.Second, cfg.Listener.PollInterval.Duration)
	// Untouched fields keep their defaults.
	assert.Equal(t, int64(60_000), cfg.Cex.RecvWindowMs)
	assert.Equal(t, 8453, cfg.Dex.ChainID)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[cex]
api_key = "file-key"
api_secret = "file-secret"
`), 0o600))

	t.Setenv("SIGBOT_CEX_API_KEY", "env-key")
	t.Setenv("SIGBOT_DEX_CHAIN_ID", "137")
	t.Setenv("SIGBOT_FEED_SYMBOLS", "ETHUSDT, BTCUSDT")
	t.Setenv("SIGBOT_REDIS_BALANCE_TTL", "30s")
	t.Setenv("SIGBOT_CEX_TESTNET", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Cex.ApiKey)
	assert.Equal(t, 137, cfg.Dex.ChainID)
	assert.Equal(t, []string{"ETHUSDT", "BTCUSDT"}, cfg.Feed.Symbols)
	assert.Equal(t, 30*time.Second, cfg.Redis.BalanceTTL.Duration)
	assert.False(t, cfg.Cex.Testnet)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Cex.SecretPassword = "pw"
	cfg.Dex.ApiKey = "dex-key"
	cfg.Redis.Password = "redis-pw"
	cfg.Server.ApiKey = "server-key"

	red := cfg.Redacted()
	assert.Equal(t, "***", red.Cex.ApiKey)
	assert.Equal(t, "***", red.Cex.ApiSecret)
	assert.Equal(t, "***", red.Cex.SecretPassword)
	assert.Equal(t, "***", red.Dex.ApiKey)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Server.ApiKey)

	// The live config is untouched.
	assert.Equal(t, "key", cfg.Cex.ApiKey)

	// Empty secrets stay empty instead of becoming the placeholder.
	assert.Empty(t, red.Listener.RpcURL)
}
