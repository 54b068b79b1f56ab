// Package validate checks untrusted free-text replies. Every validator is a
// pure function returning the parsed value or a *Rejection.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m3rciful/assetbot/internal/asset"
)

// Rejection codes.
const (
	CodeNotNumber   = "not_number"
	CodeNotPositive = "not_positive"
	CodeBadDate     = "bad_date"
	CodeBadEmail    = "bad_email"
	CodeBadPhone    = "bad_phone"
	CodeBadURL      = "bad_url"
	CodeTooLong     = "too_long"
	CodeEmpty       = "empty"
	CodeNotOption   = "not_option"
)

// Length limits for free-text answers, in runes.
const (
	MaxAssetName   = 100
	MaxContactName = 50
)

// Rejection explains why a reply was not accepted and how to fix it.
type Rejection struct {
	Code    string
	Reason  string
	Example string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func reject(code, reason, example string) error {
	return &Rejection{Code: code, Reason: reason, Example: example}
}

var (
	dateRe  = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRe = regexp.MustCompile(`^(?:\+7|7|8)?[\s-]?(?:\(\d{3}\)|\d{3})[\s-]?\d{3}[\s-]?\d{2}[\s-]?\d{2}$`)
	// plain decimal notation, no exponent or hex forms
	numberRe = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)$`)
)

// IsNone reports whether raw is the "not applicable" marker.
func IsNone(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case asset.Sentinel, "none", "нет":
		return true
	}
	return false
}

// Amount parses a strictly positive decimal number. Both "." and "," are accepted as separator.
func Amount(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if !numberRe.MatchString(s) {
		return 0, reject(CodeNotNumber, "Некорректное число", "Например: 10 или 5.5")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, reject(CodeNotNumber, "Некорректное число", "Например: 10 или 5.5")
	}
	if v <= 0 {
		return 0, reject(CodeNotPositive, "Значение должно быть больше нуля", "Например: 15000 или 1250.50")
	}
	return v, nil
}

// OptionalPrice accepts the marker or a positive amount.
func OptionalPrice(raw string) (asset.Price, error) {
	if IsNone(raw) {
		return asset.Price{NA: true}, nil
	}
	v, err := Amount(raw)
	if err != nil {
		if r, ok := AsRejection(err); ok {
			r.Example = `Введите число или "-", если актив не продан`
		}
		return asset.Price{}, err
	}
	return asset.Price{Amount: v}, nil
}

// Date accepts the marker or a real DD.MM.YYYY calendar day.
func Date(raw string) (asset.Date, error) {
	s := strings.TrimSpace(raw)
	if IsNone(s) {
		return asset.Date{NA: true}, nil
	}
	bad := reject(CodeBadDate, "Некорректная дата", `Формат: ДД.ММ.ГГГГ (например: 15.05.2023) или "-"`)
	if !dateRe.MatchString(s) {
		return asset.Date{}, bad
	}
	// time.Parse rejects day 00, month 13 and 31.02.
	day, err := time.Parse(asset.DateLayout, s)
	if err != nil {
		return asset.Date{}, bad
	}
	return asset.Date{Day: day}, nil
}

// Email checks local-part@domain.tld shape.
func Email(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !emailRe.MatchString(s) {
		return "", reject(CodeBadEmail, "Некорректный email", "Например: user@example.com")
	}
	return s, nil
}

// Phone checks a Russian number: optional +7/7/8 prefix and ten digits grouped 3-3-2-2.
func Phone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !phoneRe.MatchString(s) {
		return "", reject(CodeBadPhone, "Некорректный номер телефона", "Например: +7 (999) 123-45-67 или 89991234567")
	}
	return s, nil
}

// ImageURL accepts the marker or an http(s) link.
func ImageURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if IsNone(s) {
		return asset.Sentinel, nil
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s, nil
	}
	return "", reject(CodeBadURL, "Ссылка должна начинаться с http:// или https://", `Например: https://example.com/photo.jpg или "-"`)
}

// Text returns a validator for non-blank text of at most limit runes.
func Text(limit int, example string) func(string) (string, error) {
	return func(raw string) (string, error) {
		s := strings.TrimSpace(raw)
		if s == "" {
			return "", reject(CodeEmpty, "Значение не может быть пустым", example)
		}
		if utf8.RuneCountInString(s) > limit {
			return "", reject(CodeTooLong, fmt.Sprintf("Слишком длинно: максимум %d символов", limit), example)
		}
		return s, nil
	}
}

// NotOption is returned when a reply does not match any offered option.
func NotOption() error {
	return reject(CodeNotOption, "Пожалуйста, выберите вариант из меню", "Нажмите одну из кнопок ниже")
}
