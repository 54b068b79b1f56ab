// Package sqlstore keeps questionnaire rows in a SQL table. The same queries
// serve PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
package sqlstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/assetbot/core/logger"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// Store appends rows to the asset_rows table. Each row is kept as a JSON
// array of cells, ordered by insertion id.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database. The schema must already exist.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSQLiteSchema creates the table on a SQLite database. PostgreSQL uses migrations instead.
func EnsureSQLiteSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlstore: create schema: %w", err)
	}
	return nil
}

// ReadAll returns every stored row in insertion order.
func (s *Store) ReadAll(ctx context.Context) ([][]string, error) {
	var raw []string
	if err := s.db.SelectContext(ctx, &raw, `SELECT cells FROM asset_rows ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlstore: select rows: %w", err)
	}
	rows := make([][]string, 0, len(raw))
	for i, r := range raw {
		var cells []string
		if err := json.Unmarshal([]byte(r), &cells); err != nil {
			return nil, fmt.Errorf("sqlstore: decode row %d: %w", i+1, err)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// AppendRow inserts one row.
func (s *Store) AppendRow(ctx context.Context, row []string) error {
	if row == nil {
		row = []string{}
	}
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("sqlstore: encode row: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO asset_rows (cells) VALUES (?)`), string(b)); err != nil {
		return fmt.Errorf("sqlstore: insert row: %w", err)
	}
	return nil
}

// Check pings the database and verifies the table is readable.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlstore: ping: %w", err)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM asset_rows`); err != nil {
		return fmt.Errorf("sqlstore: table check: %w", err)
	}
	logger.Debug(ctx, "store", "store.check",
		slog.String("backend", s.db.DriverName()),
		slog.Int("rows", n),
	)
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
