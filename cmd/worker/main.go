package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/adsadmin-backend/internal/config"
	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/queue"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
	"github.com/unclebandit/adsadmin-backend/internal/service"
)

// The worker moves realtime events from RabbitMQ to the Redis channel every
// server hub listens on.
func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.RedisAddr == "" {
		logging.Fatal().Msg("REDIS_ADDR is required by the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to redis")
	}

	q, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer q.Close()

	if err := newRelay(rdb, cfg.RedisChannel).Start(q); err != nil {
		logging.Fatal().Err(err).Msg("failed to register consumer")
	}

	logging.Info().Str("topic", queue.TopicRealtimeEvents).Str("redis_channel", cfg.RedisChannel).Msg("worker running, waiting for messages")
	<-ctx.Done()
	logging.Info().Msg("worker stopping")
}

func newRelay(rdb *redis.Client, channel string) *service.RelayWorker {
	pub := &realtime.RedisPublisher{Client: rdb, Channel: channel}
	return service.NewRelayWorker(pub.Publish)
}
