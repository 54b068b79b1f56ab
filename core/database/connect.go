package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/assetbot/core/logger"
)

const connectTimeout = 5 * time.Second

func connectAttrs(cfg Config, took time.Duration) []slog.Attr {
	return []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("db", cfg.Name),
		slog.Duration("took", took),
	}
}

// Connect opens a PostgreSQL pool sized by cfg.MaxConnections and pings it.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			append(connectAttrs(cfg, time.Since(start)), slog.String("status", "fail"), slog.Any("err", err))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.Info(ctx, "db", "db.connect",
		append(connectAttrs(cfg, time.Since(start)), slog.String("status", "ok"), slog.Int("pool_open", cfg.MaxConnections))...)
	return db, nil
}

// WaitForPostgres pings dsn every two seconds until it answers, ctx ends or
// timeout passes.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()
	for {
		err := ping(ctx, dsn)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		case <-tick.C:
		}
	}
}

func ping(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
