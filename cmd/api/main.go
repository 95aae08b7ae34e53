package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/nairaland/config"
	"github.com/spacesedan/nairaland/internal/clients"
	"github.com/spacesedan/nairaland/internal/db"
	"github.com/spacesedan/nairaland/internal/handlers"
	"github.com/spacesedan/nairaland/internal/logging"
	"github.com/spacesedan/nairaland/internal/monitoring"
	"github.com/spacesedan/nairaland/internal/planner"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("[Main] Exiting", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until ctx is done. Every client it opens is closed before it
// returns, including on startup failures.
func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := handlers.Options{
		RequestTimeout:     cfg.Server.RequestTimeout,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}
	if cfg.Valkey.Address != "" {
		vc, err := clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  cfg.Valkey.Address,
			Password: cfg.Valkey.Password,
			UseTLS:   cfg.Valkey.UseTLS,
		})
		if err != nil {
			return fmt.Errorf("[Main] failed to connect to Valkey: %w", err)
		}
		defer vc.Close()
		opts.Limiter = vc
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("[Main] failed to open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Warn("[Main] Failed to close store", slog.String("error", err.Error()))
		}
	}()

	storeHealthy := &atomic.Bool{}
	go monitoring.MonitorStoreHealth(ctx, store, storeHealthy, cfg.Health.CheckInterval)
	opts.Ready = storeHealthy

	p := planner.New(store, planner.Options{
		TitleSearchCap: cfg.Search.TitleSearchCap,
		MaxLimit:       cfg.Search.MaxLimit,
	})

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      handlers.NewRouter(p, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("[Main] HTTP server listening",
			slog.String("addr", cfg.Server.HTTPAddr),
			slog.String("backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("[Main] HTTP server failed: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("[Main] Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("[Main] graceful shutdown failed: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (db.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		client, err := clients.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		collection := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		return db.NewMongoStore(collection), nil

	case config.BackendDynamoDB:
		awsCfg, err := clients.NewAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return db.NewDynamoStore(clients.NewDynamoDBClient(awsCfg, cfg.AWSEndpoint), cfg.DynamoDBTable), nil

	case config.BackendPostgres:
		pool, err := clients.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store, err := db.NewPostgresStore(pool, cfg.PostgresTable)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil

	case config.BackendMemory:
		return db.LoadMemoryStore(cfg.MemoryDumpPath)

	default:
		return nil, fmt.Errorf("[Main] unknown store backend %q", cfg.Backend)
	}
}
