// Package memstore is an in-process table used for tests and local runs.
package memstore

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrUnavailable is returned while the store is switched off with SetErr.
var ErrUnavailable = errors.New("memstore: unavailable")

// Store keeps rows in memory.
type Store struct {
	mu   sync.RWMutex
	rows [][]string
	err  error
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// SetErr makes every following call fail with err; nil restores the store.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// ReadAll returns a copy of all rows.
func (s *Store) ReadAll(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

// AppendRow appends a copy of row.
func (s *Store) AppendRow(ctx context.Context, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, slices.Clone(row))
	return nil
}

// Check reports the configured error, if any.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
