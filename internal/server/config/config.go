// Package config handles configuration for the server component, including
// defaults, environment variables, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/cryptowallet/internal/market"
)

// Config holds runtime settings for the crypto wallet server.
//
// Fields:
//   - Addr: bind address for the TCP line-protocol endpoint.
//   - DataDir: directory for JSON snapshot files (file backend).
//   - DatabaseDSN: PostgreSQL DSN (pgx); non-empty selects the SQL backend.
//   - CoinAPIBaseURL / CoinAPIKey: market-data provider settings.
//   - StalenessWindow: maximum age of cached quotes before a refresh.
//   - AutosaveSpec: cron spec for periodic snapshot writes; empty disables.
//   - ErrorLogFile: append-only file receiving a copy of the log stream.
type Config struct {
	Addr            string
	DataDir         string
	DatabaseDSN     string
	CoinAPIBaseURL  string
	CoinAPIKey      string
	StalenessWindow time.Duration
	AutosaveSpec    string
	ErrorLogFile    string
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = "localhost:7777"
	c.DataDir = "data"
	c.DatabaseDSN = ""
	c.CoinAPIBaseURL = market.DefaultCoinAPIBaseURL
	c.CoinAPIKey = ""
	c.StalenessWindow = market.DefaultStalenessWindow
	c.AutosaveSpec = "@every 5m"
	c.ErrorLogFile = "errors.log"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (including an optional .env file), an optional JSON
// file, and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
