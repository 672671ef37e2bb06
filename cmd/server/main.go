package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/CleanCSV/internal/config"
	"github.com/JonMunkholm/CleanCSV/internal/core"
	_ "github.com/JonMunkholm/CleanCSV/internal/core/formats" // Register file formats
	"github.com/JonMunkholm/CleanCSV/internal/logging"
	"github.com/JonMunkholm/CleanCSV/internal/store/postgres"
	"github.com/JonMunkholm/CleanCSV/internal/store/sqlite"
	"github.com/JonMunkholm/CleanCSV/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"max_sessions", cfg.Clean.MaxSessions,
		"max_concurrent_loads", cfg.Clean.MaxConcurrentLoads,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service := core.NewService(core.Options{
		MaxFileSize:        cfg.Clean.MaxFileSize,
		MaxSessions:        cfg.Clean.MaxSessions,
		SessionTTL:         cfg.Clean.SessionTTL,
		PreviewRows:        cfg.Clean.PreviewRows,
		MaxConcurrentLoads: cfg.Clean.MaxConcurrentLoads,
		LoadWait:           cfg.Clean.LoadWait,
		DefaultEncoding:    cfg.Clean.DefaultEncoding,
	}, store)

	formats := service.Formats()
	slog.Info("formats registered", "count", len(formats))
	for _, f := range formats {
		slog.Debug("format", "key", f.Key, "extensions", f.Extensions)
	}

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionJanitor(jobCtx, cfg.Clean.JanitorInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight loads finish decoding
		if status := service.LoaderStatus(); status.Active > 0 {
			slog.Info("waiting for loads to complete", "active", status.Active)
			if err := service.WaitForLoads(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects the configured run log and export store. With no
// driver it returns a nil Store, which disables database export.
func openStore(ctx context.Context, sc config.StoreConfig) (core.Store, func(), error) {
	switch sc.Driver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, sc.DSN, postgres.PoolConfig{
			MaxConns:        sc.MaxConns,
			MinConns:        sc.MinConns,
			MaxConnLifetime: sc.MaxConnLifetime,
			MaxConnIdleTime: sc.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}
		st := postgres.New(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("connected to database", "driver", sc.Driver)
		return st, pool.Close, nil

	case config.StoreSQLite:
		st, err := sqlite.Open(ctx, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("opened database", "driver", sc.Driver, "path", sc.DSN)
		return st, func() {
			if err := st.Close(); err != nil {
				slog.Warn("closing database", "error", err)
			}
		}, nil

	case config.StoreNone, "":
		slog.Info("no store configured, database export disabled")
		return nil, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}
