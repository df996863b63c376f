package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cryptowallet/internal/market"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "localhost:7777", cfg.Addr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, market.DefaultCoinAPIBaseURL, cfg.CoinAPIBaseURL)
	assert.Equal(t, market.DefaultStalenessWindow, cfg.StalenessWindow)
	assert.Equal(t, "@every 5m", cfg.AutosaveSpec)
	assert.Equal(t, "errors.log", cfg.ErrorLogFile)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("ADDRESS", "0.0.0.0:9000")
	t.Setenv("DATA_DIR", "/var/lib/wallet")
	t.Setenv("DATABASE_DSN", "postgres://localhost/wallet")
	t.Setenv("COINAPI_KEY", "secret")
	t.Setenv("STALENESS_WINDOW", "10m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "/var/lib/wallet", cfg.DataDir)
	assert.Equal(t, "postgres://localhost/wallet", cfg.DatabaseDSN)
	assert.Equal(t, "secret", cfg.CoinAPIKey)
	assert.Equal(t, 10*time.Minute, cfg.StalenessWindow)
}

func TestParseEnvKeepsDefaultsWhenUnset(t *testing.T) {
	t.Setenv("ADDRESS", "")
	t.Setenv("STALENESS_WINDOW", "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "localhost:7777", cfg.Addr)
	assert.Equal(t, market.DefaultStalenessWindow, cfg.StalenessWindow)
}

func TestParseEnvIgnoresBadDuration(t *testing.T) {
	t.Setenv("STALENESS_WINDOW", "not-a-duration")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, market.DefaultStalenessWindow, cfg.StalenessWindow)
}

func TestParseJsonOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"address": "127.0.0.1:8000",
		"staleness_window": "15m",
		"autosave_spec": "@every 1m"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	oldArgs := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "127.0.0.1:8000", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.StalenessWindow)
	assert.Equal(t, "@every 1m", cfg.AutosaveSpec)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "data", cfg.DataDir)
}

func TestParseJsonNoFileFlag(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server"}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "localhost:7777", cfg.Addr)
}
