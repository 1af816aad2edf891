package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/persistence"
	"storefront/internal/repository"
	"storefront/internal/seed"
	"storefront/internal/server"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// openBackends wires the snapshot and backup history repositories for the
// configured storage driver
func openBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (server.Backends, repository.SnapshotRepository, error) {
	backends := server.Backends{Redis: newRedisClient(cfg.Redis)}

	switch cfg.Storage.Driver {
	case "sqlite", "postgres":
		db, dialect, err := database.Open(cfg.Storage, cfg.Database)
		if err != nil {
			return backends, nil, err
		}
		log.Info("Database health check", zap.Any("health", database.Health(ctx, db)))

		if err := database.RunMigrations(db, dialect, log); err != nil {
			_ = db.Close()
			return backends, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations completed successfully")
		if cfg.IsDevelopment() {
			if err := database.GetMigrationStatus(db, dialect); err != nil {
				log.Warn("Failed to read migration status", zap.Error(err))
			}
		}

		backends.DB = db
		backends.BackupImports = repository.NewSQLBackupImportRepository(db, dialect)
		return backends, repository.NewSQLSnapshotRepository(db, dialect), nil
	case "redis":
		if backends.Redis == nil {
			return backends, nil, fmt.Errorf("storage driver redis needs REDIS_HOST")
		}
		if err := backends.Redis.Ping(ctx).Err(); err != nil {
			return backends, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		backends.BackupImports = repository.NewMemoryBackupImportRepository()
		return backends, repository.NewRedisSnapshotRepository(backends.Redis), nil
	case "memory":
		backends.BackupImports = repository.NewMemoryBackupImportRepository()
		return backends, repository.NewMemorySnapshotRepository(), nil
	default:
		return backends, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx := context.Background()

	backends, snapshots, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	initial, err := seed.Default(service.BcryptCost, time.Now())
	if err != nil {
		log.Fatal("Failed to load seed data", zap.Error(err))
	}

	persister := persistence.NewPersister(snapshots, cfg.Persistence.StorageKey, cfg.Persistence.Version, log)
	state, restored, err := persister.Load(ctx, initial)
	if err != nil {
		log.Fatal("Failed to restore state", zap.Error(err))
	}
	if !restored {
		if err := persister.Save(ctx, state); err != nil {
			log.Fatal("Failed to write initial state", zap.Error(err))
		}
	}
	log.Info("State ready",
		zap.String("key", persister.Key()),
		zap.Bool("restored", restored),
		zap.Int("products", len(state.Products)),
		zap.Int("orders", len(state.Orders)),
	)

	st := store.New(state, store.WithLogger(log))
	st.Subscribe(persister.Listener())
	backends.Store = st

	srv := server.NewServer(cfg, log, backends)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
