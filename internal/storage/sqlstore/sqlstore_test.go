package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/assetbot/core/database"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "data", "assets.db"))
	require.NoError(t, err)
	require.NoError(t, EnsureSQLiteSchema(ctx, db))
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteAppendAndRead(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	rows, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.AppendRow(ctx, []string{"Категория", "Подкатегория"}))
	require.NoError(t, s.AppendRow(ctx, []string{"Реальные активы", "Земельные участки", ""}))

	rows, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Категория", "Подкатегория"},
		{"Реальные активы", "Земельные участки", ""},
	}, rows)
}

func TestSQLiteCheck(t *testing.T) {
	s := openTemp(t)
	assert.NoError(t, s.Check(context.Background()))
}

func TestSchemaIsIdempotent(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, EnsureSQLiteSchema(context.Background(), s.db))
}
