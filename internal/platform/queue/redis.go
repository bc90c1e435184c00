package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a connected client, or nil when REDIS_ADDR is unset.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	slog.Info("redis connected", "addr", cfg.RedisAddr, "queue", cfg.ResultsQueueName)
	return rdb, nil
}

type pusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// ResultPublisher appends every saved test result, as JSON, to a Redis list
// for downstream consumers.
type ResultPublisher struct {
	rdb   pusher
	queue string
}

func NewResultPublisher(rdb *redis.Client, queue string) *ResultPublisher {
	if rdb == nil {
		return nil
	}
	return &ResultPublisher{rdb: rdb, queue: queue}
}

// Publish is a no-op on a nil publisher.
func (p *ResultPublisher) Publish(ctx context.Context, result *model.TestResult) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal test result: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push test result %d to %s: %w", result.ID, p.queue, err)
	}
	return nil
}
