package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	r, ok := AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, code, r.Code)
	assert.NotEmpty(t, r.Example)
}

func TestAmount(t *testing.T) {
	for _, in := range []string{"abc", "", "1.2.3", "NaN", "inf", "5 5", "1e3", "0x1p4", "1_000", "."} {
		_, err := Amount(in)
		requireCode(t, err, CodeNotNumber)
	}
	for _, in := range []string{"0", "-1", "0.0", "-0.5"} {
		_, err := Amount(in)
		requireCode(t, err, CodeNotPositive)
	}
	for in, want := range map[string]float64{"5.5": 5.5, "10": 10, " 1250,50 ": 1250.5, "0.001": 0.001, "5.": 5, ".5": 0.5} {
		v, err := Amount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v)
	}
}

func TestOptionalPrice(t *testing.T) {
	p, err := OptionalPrice("-")
	require.NoError(t, err)
	assert.True(t, p.NA)

	p, err = OptionalPrice("300")
	require.NoError(t, err)
	assert.Equal(t, 300.0, p.Amount)

	_, err = OptionalPrice("x")
	requireCode(t, err, CodeNotNumber)
}

func TestDate(t *testing.T) {
	for _, in := range []string{"31.02.2024", "00.01.2020", "15/05/2023", "2023-05-15", "1.5.2023", "15.13.2023", ""} {
		_, err := Date(in)
		requireCode(t, err, CodeBadDate)
	}

	d, err := Date("15.05.2023")
	require.NoError(t, err)
	assert.False(t, d.NA)
	assert.Equal(t, time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC), d.Day)

	for _, in := range []string{"-", "none", "None", "нет"} {
		d, err := Date(in)
		require.NoError(t, err, in)
		assert.True(t, d.NA)
	}

	d, err = Date("29.02.2024")
	require.NoError(t, err)
	assert.Equal(t, "29.02.2024", d.String())
}

func TestEmail(t *testing.T) {
	_, err := Email("not-an-email")
	requireCode(t, err, CodeBadEmail)
	for _, in := range []string{"a@b", "a@b.c", "@example.com", "user@@example.com"} {
		_, err := Email(in)
		requireCode(t, err, CodeBadEmail)
	}
	v, err := Email(" user@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", v)
	_, err = Email("first.last+tag@mail.example.org")
	require.NoError(t, err)
}

func TestPhone(t *testing.T) {
	for _, in := range []string{"+7 (999) 123-45-67", "89991234567", "9991234567", "+79991234567", "8-999-123-45-67", "7 999 123 45 67"} {
		_, err := Phone(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"12345", "+1 999 123 45 67", "phone", "+7 999 123 45 6", "+7 (999 123-45-67", "+7 999) 123-45-67"} {
		_, err := Phone(in)
		requireCode(t, err, CodeBadPhone)
	}
}

func TestImageURL(t *testing.T) {
	v, err := ImageURL("-")
	require.NoError(t, err)
	assert.Equal(t, "-", v)

	v, err = ImageURL("https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", v)

	_, err = ImageURL("ftp://example.com/a.png")
	requireCode(t, err, CodeBadURL)
}

func TestText(t *testing.T) {
	name := Text(MaxAssetName, "Пример")
	_, err := name(strings.Repeat("я", MaxAssetName+1))
	requireCode(t, err, CodeTooLong)

	v, err := name(strings.Repeat("я", MaxAssetName))
	require.NoError(t, err)
	assert.Len(t, []rune(v), MaxAssetName)

	_, err = name("   ")
	requireCode(t, err, CodeEmpty)

	contact := Text(MaxContactName, "Иван")
	_, err = contact(strings.Repeat("a", MaxContactName+1))
	r, _ := AsRejection(err)
	require.NotNil(t, r)
	assert.Contains(t, r.Reason, "50")
}
