package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cryptowallet/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   TCP bind address (e.g., "localhost:7777")
//	-o string   snapshot data directory
//	-d string   PostgreSQL DSN (enables the SQL backend)
//	-e string   CoinAPI base endpoint
//	-k string   CoinAPI key
//	-w int      price staleness window, minutes
//	-s string   autosave cron spec (e.g., "@every 5m")
//	-l string   error log file
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON overlay. The duration flag is accepted as an integer in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-d", "-e", "-k", "-w", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DataDir, "o", config.DataDir, "snapshot data directory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CoinAPIBaseURL, "e", config.CoinAPIBaseURL, "CoinAPI base endpoint")
	fs.StringVar(&config.CoinAPIKey, "k", config.CoinAPIKey, "CoinAPI key")
	fs.StringVar(&config.AutosaveSpec, "s", config.AutosaveSpec, "autosave cron spec")
	fs.StringVar(&config.ErrorLogFile, "l", config.ErrorLogFile, "error log file")

	stalenessWindow := fs.Int("w", int(config.StalenessWindow.Minutes()), "staleness window (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.StalenessWindow = time.Duration(*stalenessWindow) * time.Minute
}
