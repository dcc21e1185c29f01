package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/debate-platform/backend/internal/config"
	"github.com/emilythestrangee/debate-platform/backend/internal/database"
	"github.com/emilythestrangee/debate-platform/backend/internal/logging"
	"github.com/emilythestrangee/debate-platform/backend/internal/memstore"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
	"github.com/emilythestrangee/debate-platform/backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	policy, err := cfg.Score.Policy()
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		store  server.Store
		health func() map[string]string
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		store = memstore.New(clock)
	default:
		db, err := database.New(cfg.Database.Database(), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("close database", "error", err)
			}
		}()
		if err := database.Migrate(db.GetDB()); err != nil {
			return err
		}
		store = database.NewStore(db.GetDB())
		health = db.Health
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = notify.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.Info("redis notification feed enabled")
	}

	srv, err := server.New(store, server.Config{
		JWTSecret:         cfg.JWTSecret,
		CORSOrigins:       cfg.CORSOrigins,
		VoteRatePerMinute: cfg.VoteRatePerMinute,
		ScorePolicy:       policy,
		Notify:            cfg.Notify.Options(),
		Redis:             rdb,
		FeedLimit:         cfg.Notify.FeedLimit,
		Health:            health,
		Clock:             clock,
	}, logger, reg)
	if err != nil {
		return err
	}

	httpServer := srv.NewHTTPServer(cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("debate api listening", "addr", httpServer.Addr, "store", cfg.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := srv.Close(shutdownCtx); err != nil {
		logger.Warn("notification queue did not drain", "error", err)
	}
	return nil
}
