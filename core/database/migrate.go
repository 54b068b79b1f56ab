package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/assetbot/core/logger"
)

const migrateComponent = "db.migrate"

// upFiles lists the *.up.sql files of a migrations directory in version order.
type upFiles []string

func readUpFiles(dir string) upFiles {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files upFiles
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files
}

// between returns the files with from < version <= to.
func (f upFiles) between(from, to uint) upFiles {
	var out upFiles
	for _, name := range f {
		if v := fileVersion(name); v > from && v <= to {
			out = append(out, name)
		}
	}
	return out
}

// attrs summarizes the list with at most six names.
func (f upFiles) attrs() []slog.Attr {
	names, more := logger.SummarizeStrings(f, 6)
	return []slog.Attr{
		slog.Int("files_total", len(f)),
		slog.String("files_preview", names),
		slog.Bool("files_truncated", more),
	}
}

// fileVersion parses the numeric prefix of "000001_name.up.sql".
func fileVersion(name string) uint {
	prefix, _, _ := strings.Cut(name, "_")
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// RunMigrations waits for PostgreSQL and applies every pending up migration
// from cfg.MigrationsDir.
func RunMigrations(ctx context.Context, cfg Config) error {
	if err := WaitForPostgres(ctx, cfg.DSN(), 30*time.Second); err != nil {
		logger.Error(ctx, migrateComponent, "wait", slog.String("status", "fail"), slog.Any("err", err))
		return fmt.Errorf("database not ready: %w", err)
	}

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files := readUpFiles(dir)
	logger.Debug(ctx, migrateComponent, "resolve", append(files.attrs(), slog.String("path", dir))...)

	m, err := migrate.New("file://"+dir, cfg.URL())
	if err != nil {
		logger.Error(ctx, migrateComponent, "init", slog.String("status", "fail"), slog.Any("err", err))
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, migrateComponent, "apply",
			slog.String("status", "fail"),
			slog.Any("err", err),
			slog.Duration("took", time.Since(start)),
		)
		return fmt.Errorf("migration execution failed: %w", err)
	}
	to, _, _ := m.Version()

	applied := files.between(from, to)
	if len(applied) > 0 {
		logger.Debug(ctx, migrateComponent, "apply", applied.attrs()...)
	}
	logger.Info(ctx, migrateComponent, "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}
