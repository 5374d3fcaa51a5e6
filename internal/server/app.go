// Package server initializes and runs the vault server: it resolves the
// encryption key, connects the database and the object store, wires the
// services and schedules the expired-entry sweep.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/vaultbox/internal/logging"
	"github.com/dmitrijs2005/vaultbox/internal/server/analytics"
	"github.com/dmitrijs2005/vaultbox/internal/server/config"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultbox/internal/server/services"
	"github.com/dmitrijs2005/vaultbox/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Vault  *services.VaultService
	Shares *services.ShareService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	secretKey, err := cfg.SecretKey()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := storage.NewS3BlobStore(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	recorder := analytics.NewPostgresRecorder(db)

	vault, err := services.NewVaultService(
		secretKey, cfg.EntryTTL, cfg.UploadTimeout,
		rm.VaultEntries(db), rm.RecentUploads(db), blobs, recorder, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	shares := services.NewShareService(
		cfg.ShareBaseURL,
		rm.Shares(db), rm.VaultEntries(db), rm.Users(db),
		vault, recorder, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		Vault:  vault,
		Shares: shares,
	}, nil
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

// startSweeper schedules the expired-entry sweep and runs one sweep
// immediately so a restart does not leave stale objects waiting for the
// next tick.
func (app *App) startSweeper(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(app.config.SweepSchedule, func() {
		if _, err := app.Vault.SweepExpired(ctx); err != nil {
			app.logger.Error(ctx, "sweep failed", "error", err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", app.config.SweepSchedule, err)
	}

	if _, err := app.Vault.SweepExpired(ctx); err != nil {
		app.logger.Error(ctx, "initial sweep failed", "error", err.Error())
	}

	c.Start()
	return c, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting vault server")

	app.initSignalHandler(cancelFunc)

	sweeper, err := app.startSweeper(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")
	<-sweeper.Stop().Done()
	app.Vault.Close()
	return app.db.Close()
}
