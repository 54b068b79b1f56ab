package logger

import (
	"strings"
	"time"
)

// Status is "ok" for a nil error and "fail" otherwise.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "fail"
}

// Took is time.Since(start) rounded to whole milliseconds.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to the millisecond; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// SummarizeStrings joins the first limit values with ", " and reports
// whether any were left out.
func SummarizeStrings(values []string, limit int) (string, bool) {
	limit = max(limit, 0)
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
