package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/storage/memstore"
)

func sample(name string) asset.Record {
	return asset.Record{
		Category:     "Реальные активы",
		Subcategory:  "Земельные участки",
		Name:         name,
		Quantity:     1,
		Currency:     "RUB",
		EntryDate:    asset.Date{Day: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
		EntryPrice:   3500000,
		ExitDate:     asset.Date{NA: true},
		ExitPrice:    asset.Price{NA: true},
		ContactName:  "Анна",
		ContactEmail: "anna@example.com",
		ContactPhone: "89991234567",
		Submitter:    "@anna",
	}
}

func TestHeaderWrittenBeforeFirstRow(t *testing.T) {
	st := memstore.New()
	s := New(st)
	require.NoError(t, s.Submit(context.Background(), []asset.Record{sample("Участок")}))

	rows, err := st.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, asset.Header, rows[0])
	assert.Equal(t, "Участок", rows[1][2])
	assert.Equal(t, "3500000", rows[1][6])
	assert.Equal(t, "-", rows[1][7])
}

func TestHeaderNotDuplicated(t *testing.T) {
	st := memstore.New()
	require.NoError(t, New(st).Submit(context.Background(), []asset.Record{sample("a")}))
	// A fresh submitter must detect the existing header.
	s := New(st)
	require.NoError(t, s.Submit(context.Background(), []asset.Record{sample("b"), sample("c")}))
	require.NoError(t, s.Submit(context.Background(), []asset.Record{sample("d")}))

	rows, _ := st.ReadAll(context.Background())
	require.Len(t, rows, 5)
	var names []string
	for _, r := range rows[1:] {
		names = append(names, r[2])
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}

func TestStoreErrorIsWrapped(t *testing.T) {
	st := memstore.New()
	st.SetErr(memstore.ErrUnavailable)
	err := New(st).Submit(context.Background(), []asset.Record{sample("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, memstore.ErrUnavailable))
	assert.Contains(t, err.Error(), "submit:")
}

func TestHeaderRecheckedAfterFailedRead(t *testing.T) {
	st := memstore.New()
	s := New(st)
	st.SetErr(memstore.ErrUnavailable)
	require.Error(t, s.Submit(context.Background(), []asset.Record{sample("x")}))

	st.SetErr(nil)
	require.NoError(t, s.Submit(context.Background(), []asset.Record{sample("y")}))
	rows, _ := st.ReadAll(context.Background())
	require.Len(t, rows, 2)
	assert.Equal(t, asset.Header, rows[0])
}
