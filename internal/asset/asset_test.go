package asset

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDraft(t *testing.T, a *Answers, name string) {
	t.Helper()
	day := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, a.Set(FieldCategory, "Финансовые активы"))
	require.NoError(t, a.Set(FieldSubcategory, "Акции"))
	require.NoError(t, a.Set(FieldName, name))
	require.NoError(t, a.Set(FieldQuantity, 5.5))
	require.NoError(t, a.Set(FieldCurrency, "RUB"))
	require.NoError(t, a.Set(FieldEntryPrice, 1250.5))
	require.NoError(t, a.Set(FieldEntryDate, Date{Day: day}))
	require.NoError(t, a.Set(FieldExitDate, Date{NA: true}))
	require.NoError(t, a.Set(FieldExitPrice, Price{NA: true}))
	require.NoError(t, a.Set(FieldImage, Sentinel))
}

func TestSetRejectsWrongType(t *testing.T) {
	var a Answers
	err := a.Set(FieldQuantity, "5")
	require.Error(t, err)
	assert.Nil(t, a.Draft.Quantity)

	require.Error(t, a.Set(Field("bogus"), "x"))
}

func TestRecordsRowOrder(t *testing.T) {
	var a Answers
	fullDraft(t, &a, "Акции Сбербанка")
	require.NoError(t, a.Set(FieldContactName, "Иван"))
	require.NoError(t, a.Set(FieldContactEmail, "user@example.com"))
	require.NoError(t, a.Set(FieldContactPhone, "+7 999 123-45-67"))

	recs, err := Records(a, "@ivan")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	want := []string{
		"Финансовые активы", "Акции", "Акции Сбербанка", "5.5", "RUB",
		"15.05.2023", "1250.5", "-", "-", "",
		"Иван", "user@example.com", "+7 999 123-45-67", "@ivan",
	}
	assert.Equal(t, want, recs[0].Row())
	assert.Len(t, Header, len(want))
}

func TestStartNextKeepsContactAndClearsDraft(t *testing.T) {
	var a Answers
	require.NoError(t, a.Set(FieldContactName, "Иван"))
	fullDraft(t, &a, "first")
	require.NoError(t, a.Set(FieldRepeat, "yes"))
	assert.True(t, a.More)

	a.StartNext()
	assert.False(t, a.More)
	assert.Equal(t, Draft{}, a.Draft)
	assert.Equal(t, "Иван", a.Contact.Name)
	require.Len(t, a.Completed, 1)
	assert.Equal(t, "first", a.Completed[0].Name)
	assert.Equal(t, 1, a.Count())
}

func TestRecordsIncomplete(t *testing.T) {
	var a Answers
	fullDraft(t, &a, "only")
	_, err := Records(a, "@x")
	var inc *IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Contains(t, inc.Fields, FieldContactEmail)
}

func TestCloneIsDeep(t *testing.T) {
	var a Answers
	fullDraft(t, &a, "x")
	a.StartNext()
	fullDraft(t, &a, "y")

	c := a.Clone()
	*c.Draft.Quantity = 99
	*c.Completed[0].Quantity = 77
	assert.Equal(t, 5.5, *a.Draft.Quantity)
	assert.Equal(t, 5.5, *a.Completed[0].Quantity)
}
