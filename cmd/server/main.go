package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/api"
	"github.com/orlovm/bidmarket/internal/app"
	"github.com/orlovm/bidmarket/internal/app/maintenance"
	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/database"
	"github.com/orlovm/bidmarket/internal/notifications"
	"github.com/orlovm/bidmarket/internal/services"
	"github.com/orlovm/bidmarket/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	dispatchDrain   = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bidmarket-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}

	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := database.Open(cfg.DatabaseOptions())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDatabase(db, log)

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	resolver, err := auth.NewJWTResolver(auth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("build session resolver: %w", err)
	}

	sink, err := services.NewNotificationService(db)
	if err != nil {
		return fmt.Errorf("build notification sink: %w", err)
	}

	dispatcher := notifications.NewDispatcher(sink,
		notifications.WithQueueSize(cfg.Dispatcher.QueueSize),
		notifications.WithWorkers(cfg.Dispatcher.Workers),
	)
	defer dispatcher.Close(dispatchDrain)

	if cfg.Maintenance.Enabled {
		cleaner, cleanErr := maintenance.NewCleaner(db,
			maintenance.WithNotificationRetentionDays(cfg.Maintenance.NotificationRetention),
			maintenance.WithAlertRetentionDays(cfg.Maintenance.AlertRetention),
			maintenance.WithSchedule(cfg.Maintenance.Schedule),
		)
		if cleanErr != nil {
			return fmt.Errorf("build cleaner: %w", cleanErr)
		}
		if cleanErr = cleaner.Start(); cleanErr != nil {
			return fmt.Errorf("start cleaner: %w", cleanErr)
		}
		defer cleaner.Stop()
	}

	router, err := api.NewRouter(db, resolver, dispatcher, cfg)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("database handle unavailable on close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}
