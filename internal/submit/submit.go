// Package submit writes finished questionnaire records to a tabular store.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/internal/asset"
)

// TableStore is an append-only table of string rows.
type TableStore interface {
	// ReadAll returns every row currently stored, header included.
	ReadAll(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
	// Check verifies the store is reachable.
	Check(ctx context.Context) error
}

// Submitter appends records to a TableStore, writing the header row first
// when the table is empty.
type Submitter struct {
	store TableStore

	mu            sync.Mutex
	headerChecked bool
}

// New constructs a Submitter over store.
func New(store TableStore) *Submitter {
	return &Submitter{store: store}
}

// Submit appends one row per record in order. Rows already appended stay
// appended when a later row fails.
func (s *Submitter) Submit(ctx context.Context, records []asset.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.ensureHeader(ctx); err != nil {
		return err
	}
	for i, r := range records {
		if err := s.store.AppendRow(ctx, r.Row()); err != nil {
			logger.Error(ctx, "submit", "submit.append",
				slog.String("status", "error"),
				slog.Int("row", i+1),
				slog.Int("rows", len(records)),
				slog.String("err", err.Error()),
			)
			return fmt.Errorf("submit: append row %d of %d: %w", i+1, len(records), err)
		}
	}
	logger.Info(ctx, "submit", "submit.append",
		slog.String("status", "ok"),
		slog.Int("rows", len(records)),
		slog.Duration("took", logger.Took(start)),
	)
	return nil
}

func (s *Submitter) ensureHeader(ctx context.Context) error {
	if s.headerChecked {
		return nil
	}
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("submit: read table: %w", err)
	}
	if len(rows) == 0 {
		if err := s.store.AppendRow(ctx, slices.Clone(asset.Header)); err != nil {
			return fmt.Errorf("submit: write header: %w", err)
		}
		logger.Info(ctx, "submit", "submit.header", slog.String("status", "ok"))
	}
	s.headerChecked = true
	return nil
}
