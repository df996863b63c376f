package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/cryptowallet/internal/flagx"
	"github.com/dmitrijs2005/cryptowallet/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "30m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	Addr            string         `json:"address"`
	DataDir         string         `json:"data_dir"`
	DatabaseDSN     string         `json:"database_dsn"`
	CoinAPIBaseURL  string         `json:"coinapi_base_url"`
	CoinAPIKey      string         `json:"coinapi_key"`
	StalenessWindow timex.Duration `json:"staleness_window"`
	AutosaveSpec    string         `json:"autosave_spec"`
	ErrorLogFile    string         `json:"error_log_file"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.CoinAPIBaseURL != "" {
		config.CoinAPIBaseURL = c.CoinAPIBaseURL
	}
	if c.CoinAPIKey != "" {
		config.CoinAPIKey = c.CoinAPIKey
	}
	if c.StalenessWindow.Duration != 0 {
		config.StalenessWindow = time.Duration(c.StalenessWindow.Duration)
	}
	if c.AutosaveSpec != "" {
		config.AutosaveSpec = c.AutosaveSpec
	}
	if c.ErrorLogFile != "" {
		config.ErrorLogFile = c.ErrorLogFile
	}
}
