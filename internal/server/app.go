// Package server initializes and runs the crypto wallet server. It wires the
// storage backend, price cache, protocol dispatcher, and the reactor event
// loop, restores snapshots on startup, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/logging"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
	"github.com/dmitrijs2005/cryptowallet/internal/server/config"
	"github.com/dmitrijs2005/cryptowallet/internal/server/protocol"
	"github.com/dmitrijs2005/cryptowallet/internal/server/reactor"
	"github.com/dmitrijs2005/cryptowallet/internal/server/session"
	"github.com/dmitrijs2005/cryptowallet/internal/server/storage"
	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   storage.Manager
	errFile *os.File
}

func NewApp(c *config.Config) (*App, error) {

	// The error log file receives a copy of the full log stream and serves
	// as the durable error record.
	logSink := io.Writer(os.Stdout)
	var errFile *os.File
	if c.ErrorLogFile != "" {
		f, err := os.OpenFile(c.ErrorLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening error log: %w", err)
		}
		errFile = f
		logSink = io.MultiWriter(os.Stdout, f)
	}

	logger := logging.NewJSONLogger(logSink)

	store, err := newStorageManager(c)
	if err != nil {
		if errFile != nil {
			errFile.Close()
		}
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return &App{config: c, logger: logger, store: store, errFile: errFile}, nil
}

func newStorageManager(c *config.Config) (storage.Manager, error) {
	if c.DatabaseDSN != "" {
		return storage.NewPostgresManager(c.DatabaseDSN)
	}
	return storage.NewFileManager(c.DataDir)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	defer app.store.Close()
	if app.errFile != nil {
		defer app.errFile.Close()
	}

	if err := app.store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	provider := market.NewCoinAPIClient(app.config.CoinAPIBaseURL, app.config.CoinAPIKey)
	cache := market.NewCache(provider, app.config.StalenessWindow, app.logger)
	app.restoreMarket(ctx, cache)

	users := app.restoreUsers(ctx)

	dispatcher := protocol.NewDispatcher(users, session.NewRegistry(), cache, app.store, app.logger)
	srv := reactor.New(app.config.Addr, dispatcher, app.logger)

	if app.config.AutosaveSpec != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(app.config.AutosaveSpec, srv.RequestPersist); err != nil {
			return fmt.Errorf("scheduling autosave: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	return srv.Run(ctx)
}

// restoreMarket seeds the price cache from the persisted snapshot. A missing
// snapshot is normal on first start; the cache fetches fresh data on demand.
func (app *App) restoreMarket(ctx context.Context, cache *market.Cache) {
	snapshot, err := app.store.Market().Load(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			app.logger.Warn(ctx, "market snapshot unreadable, starting empty", "error", err.Error())
		}
		return
	}
	cache.Restore(snapshot)
	app.logger.Info(ctx, "market snapshot restored",
		"assets", len(snapshot.Assets), "last_refreshed", snapshot.LastRefreshed)
}

// restoreUsers loads the registered-user set. Unreadable snapshots are
// logged and the server starts with no users rather than failing.
func (app *App) restoreUsers(ctx context.Context) []*wallet.User {
	users, err := app.store.Users().Load(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			app.logger.Warn(ctx, "users snapshot unreadable, starting empty", "error", err.Error())
		}
		return nil
	}
	app.logger.Info(ctx, "users snapshot restored", "users", len(users))
	return users
}
