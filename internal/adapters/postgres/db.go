// Package postgres
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"finmon/internal/logger"
)

//go:embed migrations/*.sql
var MigrationsFS embed.FS

// InitDB opens a pgx pool and pings it with a bounded retry loop. A pool is
// returned even when every ping fails, so the server can come up and report
// an unhealthy database on /health instead of refusing to start.
func InitDB(ctx context.Context, databaseURL string, log logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	backoff := retry.WithMaxRetries(4, retry.NewConstant(3*time.Second))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			log.Warn("db: connect failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return pool, fmt.Errorf("connect to database: %w", err)
	}

	log.Info("db: connected")
	return pool, nil
}
