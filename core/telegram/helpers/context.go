package helpers

import (
	"context"

	"github.com/m3rciful/assetbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	ctxKey = "logger_ctx"
	ridKey = "rid"
)

// updateIDs returns the update, chat and sender ids of c; missing parts are zero.
func updateIDs(c tele.Context) (updateID int, chatID, userID int64) {
	updateID = c.Update().ID
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	return updateID, chatID, userID
}

// RequestID returns the correlation id of the update, assigning one on first use.
func RequestID(c tele.Context) string {
	if rid, _ := c.Get(ridKey).(string); rid != "" {
		return rid
	}
	rid := logger.BuildRID(updateIDs(c))
	c.Set(ridKey, rid)
	return rid
}

// ContextFrom returns the context stored on c by BuildContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the per-update context carrying rid, update ids and
// the "tg" logger. It is built once and cached on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	updateID, chatID, userID := updateIDs(c)
	ctx := logger.WithRID(context.Background(), RequestID(c))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler tags the update context with the serving handler.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" && logger.HandlerFrom(ctx) != handler {
		ctx = logger.WithHandler(ctx, handler)
		c.Set(ctxKey, ctx)
	}
	return ctx
}
