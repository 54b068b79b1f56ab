package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/assetbot/core/logger"
	tghelpers "github.com/m3rciful/assetbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update ids for a short window. LoggerMiddleware is
// installed both globally and per route, and a receipt is logged once.
type seenUpdates struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

var receipts = &seenUpdates{ttl: 10 * time.Second, seen: make(map[int]time.Time)}

// first reports whether id was not seen within the window and marks it seen.
func (s *seenUpdates) first(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, k)
		}
	}
	if _, dup := s.seen[id]; dup {
		return false
	}
	s.seen[id] = now
	return true
}

// LoggerMiddleware attaches the per-update context and logs a sampled
// update.received line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()
		if logger.ShouldSampleDebug() && receipts.first(upd.ID, time.Now()) {
			logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", UpdateKind(c.Update())),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	if c.Message() != nil {
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}

// UpdateKind classifies an update for logs and rate-limit exclusions.
func UpdateKind(upd tele.Update) string {
	msg := upd.Message
	switch {
	case msg == nil:
		return "other"
	case strings.HasPrefix(msg.Text, "/"):
		return "command"
	case msg.Text != "":
		return "message"
	case msg.Photo != nil || msg.Document != nil:
		return "media"
	}
	return "other"
}
