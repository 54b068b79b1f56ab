package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/assetbot/core/database"
	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/internal/storage/memstore"
	"github.com/m3rciful/assetbot/internal/storage/sheets"
	"github.com/m3rciful/assetbot/internal/storage/sqlstore"
	"github.com/m3rciful/assetbot/internal/submit"
)

// openStore builds the table store for the configured backend. The returned
// close function is never nil.
func openStore(ctx context.Context, cfg *Config) (submit.TableStore, func() error, error) {
	noop := func() error { return nil }
	logger.Info(ctx, "store", "store.open", slog.String("backend", cfg.Storage.Backend))

	switch cfg.Storage.Backend {
	case BackendSheets:
		sc := cfg.Storage.Sheets
		s, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   sc.SpreadsheetID,
			SheetName:       sc.SheetName,
			CredentialsFile: sc.CredentialsFile,
			CredentialsJSON: sc.CredentialsJSON,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case BackendPostgres:
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		if err := database.RunMigrations(ctx, cfg.Database); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		s := sqlstore.New(db)
		return s, s.Close, nil

	case BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		if err := sqlstore.EnsureSQLiteSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		s := sqlstore.New(db)
		return s, s.Close, nil

	case BackendMemory:
		return memstore.New(), noop, nil
	}
	return nil, noop, fmt.Errorf("app: unknown storage backend %q", cfg.Storage.Backend)
}
