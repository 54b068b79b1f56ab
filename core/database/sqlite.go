package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/assetbot/core/logger"
)

// OpenSQLite opens (creating if needed) a single-file SQLite database.
// The pool is limited to one connection since SQLite serializes writers.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			slog.String("status", "error"),
			slog.String("driver", "sqlite"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	logger.Info(ctx, "db", "db.connect",
		slog.String("status", "ok"),
		slog.String("driver", "sqlite"),
		slog.String("path", path),
		slog.Duration("took", logger.Took(start)),
	)
	return db, nil
}
