package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeSheet struct {
	mu     sync.Mutex
	title  string
	rows   [][]string
	params []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]string `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, body.Values...)
		f.params = append(f.params, r.URL.Query().Get("valueInputOption")+"/"+r.URL.Query().Get("insertDataOption"))
		_, _ = w.Write([]byte(`{"spreadsheetId":"doc"}`))
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.rows})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{map[string]any{"properties": map[string]any{"title": f.title}}},
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestStore(t *testing.T, sheet string, fake *fakeSheet) *Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	s, err := New(context.Background(), Config{SpreadsheetID: "doc", SheetName: sheet},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestAppendAndReadAll(t *testing.T) {
	fake := &fakeSheet{title: "Assets"}
	s := newTestStore(t, "Assets", fake)
	ctx := context.Background()

	rows, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.AppendRow(ctx, []string{"Категория", "Подкатегория"}))
	require.NoError(t, s.AppendRow(ctx, []string{"Реальные активы", ""}))

	rows, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Категория", "Подкатегория"}, {"Реальные активы", ""}}, rows)
	assert.Equal(t, []string{"RAW/INSERT_ROWS", "RAW/INSERT_ROWS"}, fake.params)
}

func TestAppendKeepsCellsLiteral(t *testing.T) {
	fake := &fakeSheet{title: "Assets"}
	s := newTestStore(t, "Assets", fake)
	ctx := context.Background()

	row := []string{"+7 (999) 123-45-67", "=IMPORTXML(\"x\")", "5.5", "-"}
	require.NoError(t, s.AppendRow(ctx, row))

	rows, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{row}, rows)
	assert.Equal(t, []string{"RAW/INSERT_ROWS"}, fake.params)
}

func TestCheckFindsWorksheet(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, newTestStore(t, "Assets", &fakeSheet{title: "Assets"}).Check(ctx))

	err := newTestStore(t, "Other", &fakeSheet{title: "Assets"}).Check(ctx)
	assert.True(t, errors.Is(err, ErrSheetNotFound), "got %v", err)
}

func TestRowRangeQuotesSheetName(t *testing.T) {
	s := &Store{sheet: "Bob's list"}
	assert.Equal(t, "'Bob''s list'!A:N", s.rowRange())
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "doc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}
