package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/assetbot/core/logger"
	tghelpers "github.com/m3rciful/assetbot/core/telegram/helpers"
)

// RateLimitOptions configures RateLimitMiddleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds (see UpdateKind) that bypass the limit.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// pruneAbove bounds the per-user table; expired entries are dropped past it.
const pruneAbove = 4096

// userGate admits one update per user per interval.
type userGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[int64]time.Time
}

func (g *userGate) admit(userID int64, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if at, ok := g.last[userID]; ok && now.Sub(at) < g.interval {
		return false
	}
	g.last[userID] = now
	if len(g.last) > pruneAbove {
		for id, at := range g.last {
			if now.Sub(at) >= g.interval {
				delete(g.last, id)
			}
		}
	}
	return true
}

// RateLimitMiddleware drops updates arriving from a user faster than
// opts.Interval and answers them with opts.OnLimited.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	gate := &userGate{interval: opts.Interval, last: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip || gate.admit(user.ID, time.Now()) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}
