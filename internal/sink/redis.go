package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"companion-cli/internal/config"
	"companion-cli/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis appends items to a stream with XADD.
type Redis struct {
	rdb    *redis.Client
	stream string
}

func OpenRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*Redis, error) {
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		return nil, errors.New("redis sink: missing stream")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Warn("parse redis url failed, using it as address", zap.Error(err))
		opt = &redis.Options{Addr: cfg.URL}
	}
	rdb := redis.NewClient(opt)

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Warn("redis ping failed", zap.Error(err))
	}
	return &Redis{rdb: rdb, stream: stream}, nil
}

func streamValues(it model.Item) map[string]any {
	delegated := "0"
	if it.Metadata.Delegated {
		delegated = "1"
	}
	return map[string]any{
		"id":         it.ID,
		"content":    it.Content,
		"status":     string(it.Status),
		"kind":       string(it.Kind),
		"owner_id":   it.OwnerID,
		"source":     it.Metadata.Source,
		"delegated":  delegated,
		"created_at": it.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (r *Redis) Submit(ctx context.Context, it model.Item) error {
	err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: streamValues(it),
	}).Err()
	if err != nil {
		return fmt.Errorf("redis sink: xadd %s: %w", r.stream, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
