// Package server wires configuration, storage, services and the HTTP front
// end together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/config"
	"github.com/dmitrijs2005/dealership/internal/server/metrics"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dealership/internal/server/services"
	"github.com/dmitrijs2005/dealership/internal/server/storage"
	"github.com/dmitrijs2005/dealership/internal/server/web"
)

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

// Backend is the storage and service layer shared by the HTTP server and the
// admin CLI.
type Backend struct {
	DB        *sql.DB
	Accounts  *services.AccountService
	Inventory *services.InventoryService
	Favorites *services.FavoriteService
	Tokens    *auth.TokenIssuer
	Images    *storage.ImageStore
	Metrics   *metrics.Metrics
}

// NewBackend opens the configured store, applies migrations, and builds the
// services. DatabaseDSN "memory" selects the in-memory store.
func NewBackend(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Backend, error) {
	b := &Backend{
		Tokens:  auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.TokenTTL),
		Metrics: metrics.New(),
		Images: storage.NewImageStore(storage.Options{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			PresignTTL:   cfg.S3PresignTTL,
		}),
	}

	var (
		m    repomanager.RepositoryManager
		tx   dbx.TxRunner
		dbtx dbx.DBTX
	)

	if cfg.UsesMemoryStore() {
		logger.Warn(ctx, "using in-memory store; data is lost on exit")
		m = repomanager.NewInMemoryRepositoryManager()
		tx = &dbx.LockRunner{}
	} else {
		db, err := openPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		b.DB = db
		b.Metrics.RegisterDB(db, "dealership")
		m, tx, dbtx = pm, dbx.NewSQLRunner(db), db
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	b.Accounts = services.NewAccountService(dbtx, tx, m, hasher, b.Tokens, logger)
	b.Inventory = services.NewInventoryService(dbtx, tx, m, cfg.NavCacheTTL, b.Metrics, logger)
	b.Favorites = services.NewFavoriteService(dbtx, tx, m, logger)

	return b, nil
}

// Ping reports store health; the in-memory store is always healthy.
func (b *Backend) Ping(ctx context.Context) error {
	if b.DB == nil {
		return nil
	}
	return b.DB.PingContext(ctx)
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *Backend
	server  *web.Server
}

// NewApp builds the application. Logs go to w.
func NewApp(ctx context.Context, cfg *config.Config, w io.Writer) (*App, error) {
	logger := logging.NewLogger(cfg.LogLevel, cfg.EffectiveLogFormat(), w)

	b, err := NewBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s, err := web.NewServer(cfg, web.Deps{
		Accounts:  b.Accounts,
		Inventory: b.Inventory,
		Favorites: b.Favorites,
		Tokens:    b.Tokens,
		Images:    b.Images,
		Metrics:   b.Metrics,
		Health:    b.Ping,
	}, logger)
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	return &App{config: cfg, logger: logger, backend: b, server: s}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)

	if cerr := app.backend.Close(); cerr != nil {
		app.logger.Error(ctx, "closing database", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
