package logger

import (
	"log/slog"
	"strings"
)

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// statusAliases folds synonyms into the status vocabulary:
// ok, fail, skip, retry, rate_limited, cancelled.
var statusAliases = map[string]string{
	"error":    "fail",
	"failed":   "fail",
	"err":      "fail",
	"skipped":  "skip",
	"canceled": "cancelled",
	"limited":  "rate_limited",
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := statusAliases[s]; ok {
		return alias
	}
	return s
}

// defaultKeyOrder puts identity and outcome first; keys not listed follow alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"kind",
	"session_id",
	"step",
	"next",
	"code",
	"outcome",
	"duration_ms",
	"took_ms",
	"messages",
	"kb",
	"records",
	"rows",
	"backend",
	"sheet",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
	"sessions",
	"pending",
}
