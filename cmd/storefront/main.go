// cmd/storefront/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/infrastructure/storage"
	"github.com/your-org/storefront/internal/interfaces/http"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/metrics"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"github.com/your-org/storefront/internal/storefront"
)

// stateStore is a storage backend the server can also health check
type stateStore interface {
	storage.Store
	http.HealthChecker
}

func main() {
	os.Exit(run())
}

// run wires and serves the gateway, returning the process exit code once
// every deferred cleanup has run
func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg)
	logr.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	store, closer, err := openStorage(cfg, logr)
	if err != nil {
		logr.Errorf("Failed to open client state storage: %v", err)
		return 1
	}
	defer closer.Close()

	if cfg.Storage.Secret == "" {
		logr.Warn("STORAGE_SECRET is not set; session tokens are stored unsealed")
	}

	m := metrics.New()
	backend := api.NewBackend(cfg.API, api.WithMetrics(m), api.WithLogger(logr.WithField("component", "api")))

	registry := storefront.NewRegistry(storefront.Deps{
		Backend:  backend,
		Storage:  store,
		Secret:   cfg.Storage.Secret,
		Log:      logr,
		Metrics:  m,
		Notifier: storefront.LogNotifier{Log: logr.WithField("component", "notifier")},
	})

	server := http.NewServer(cfg, http.Dependencies{
		Registry: registry,
		Backend:  backend,
		Metrics:  m,
		PDF:      pdf.NewService(cfg.Company, cfg.Display),
		Storage:  store,
		Log:      logr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Idle visitors are reloaded from storage on their next request
	go registry.RunJanitor(ctx, time.Minute, 30*time.Minute)
	go server.RunLimiterJanitor(ctx, 10*time.Minute)

	logr.Info("✅ All systems operational!")

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal or a server failure, then shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	exitCode := waitForStop(quit, serverErr, logr)
	cancel()

	// Give server 30 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logr.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	logr.Info("✅ Server shutdown completed")

	return exitCode
}

// waitForStop blocks until a shutdown signal arrives or the server exits, and
// returns the exit code
func waitForStop(quit <-chan os.Signal, serverErr <-chan error, logr logrus.FieldLogger) int {
	select {
	case <-quit:
		logr.Info("👋 Shutting down gracefully...")
		return 0
	case err := <-serverErr:
		if err != nil {
			logr.Errorf("HTTP server failed: %v", err)
			return 1
		}
		return 0
	}
}

// openStorage connects the configured client state backend
func openStorage(cfg *config.Config, logr *logrus.Logger) (stateStore, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		client, err := redis.NewConnection(cfg, logr)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil

	case config.StorageDriverPostgres:
		db, err := postgres.NewConnection(cfg, logr)
		if err != nil {
			return nil, nil, err
		}

		migration := postgres.NewMigration(db.GetDB(), logr)
		if err := migration.RunAutoMigrations(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			logr.Warnf("Index creation failed: %v", err)
		}
		return &pgStore{Store: postgres.NewStore(db.GetDB()), db: db}, db, nil

	default:
		f, err := storage.NewFile(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, err
		}
		logr.WithField("path", cfg.Storage.FilePath).Info("✅ File storage ready")
		return f, io.NopCloser(nil), nil
	}
}

// pgStore adds the connection's health check to the gorm store
type pgStore struct {
	*postgres.Store
	db *postgres.DB
}

func (p *pgStore) Health(ctx context.Context) error {
	return p.db.Health(ctx)
}
