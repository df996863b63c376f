package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; missing files are fine.
//
// Recognized variables: ADDRESS, DATA_DIR, DATABASE_DSN, COINAPI_BASE_URL,
// COINAPI_KEY, STALENESS_WINDOW (Go duration string), AUTOSAVE_SPEC,
// ERROR_LOG_FILE.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.Addr, "ADDRESS")
	setString(&config.DataDir, "DATA_DIR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.CoinAPIBaseURL, "COINAPI_BASE_URL")
	setString(&config.CoinAPIKey, "COINAPI_KEY")
	setString(&config.AutosaveSpec, "AUTOSAVE_SPEC")
	setString(&config.ErrorLogFile, "ERROR_LOG_FILE")

	if v := os.Getenv("STALENESS_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.StalenessWindow = d
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
