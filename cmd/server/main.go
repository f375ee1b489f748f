// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/adsadmin-backend/internal/config"
	"github.com/unclebandit/adsadmin-backend/internal/controller"
	"github.com/unclebandit/adsadmin-backend/internal/db"
	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/queue"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/repository/memory"
	"github.com/unclebandit/adsadmin-backend/internal/service"
)

func main() {
	loaded := config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if len(loaded) == 0 {
		logging.Info().Msg("no .env file found, relying on OS environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, cleanup := openGateway(cfg)
	defer cleanup()

	// Redis is optional: with it, every instance relays events published by any instance.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
	}

	hub := realtime.NewHub(rdb, cfg.RedisChannel, cfg.CORSAllowedOrigins)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("realtime hub stopped")
		}
	}()

	q := openQueue(cfg)
	defer q.Close()

	// Without a Redis fan-out the hub consumes the queue itself; with one,
	// cmd/worker moves AMQP events to Redis.
	if cfg.EventsBackend == "memory" || rdb == nil {
		if err := service.NewRelayWorker(hub.Relay).Start(q); err != nil {
			logging.Fatal().Err(err).Msg("failed to start realtime relay")
		}
	}

	services := service.New(gw, q)
	registry := services.Registry()
	for _, rt := range registry.Routers() {
		for _, p := range rt.Procedures() {
			logging.Debug().Str("path", p.Path()).Str("kind", string(p.Kind)).Msg("procedure registered")
		}
	}

	router := controller.NewRouter(controller.RouterConfig{
		Registry:          registry,
		Pinger:            gw.Pinger,
		Realtime:          hub,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Str("events", cfg.EventsBackend).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openGateway(cfg *config.Config) (*repository.Gateway, func()) {
	if cfg.StoreBackend == "memory" {
		logging.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.NewGateway(memory.NewStore()), func() {}
	}

	conn, err := db.Handle(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	return repository.NewPostgresGateway(conn), func() { _ = conn.Close() }
}

func openQueue(cfg *config.Config) queue.Queue {
	if cfg.EventsBackend == "amqp" {
		q, err := queue.DialAMQP(cfg.AMQPURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		return q
	}
	return queue.NewInMemoryQueue()
}
