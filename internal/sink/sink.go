// Package sink holds the item sinks the capture controller persists through.
package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"companion-cli/internal/capture"
	"companion-cli/internal/config"

	"go.uber.org/zap"
)

// Sink is an ItemSink that owns a connection.
type Sink interface {
	capture.ItemSink
	io.Closer
}

// Open builds the sink selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SinkConfig, log *zap.Logger) (Sink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("sink").With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(ctx, cfg.SQLite.Path)
	case "postgres":
		return OpenPostgres(ctx, cfg.Postgres, log)
	case "supabase":
		return NewSupabase(cfg.Supabase, &http.Client{Timeout: 15 * time.Second})
	case "nats":
		return OpenNATS(ctx, cfg.NATS, log)
	case "redis":
		return OpenRedis(ctx, cfg.Redis, log)
	default:
		return nil, fmt.Errorf("unknown sink driver: %q", cfg.Driver)
	}
}
