package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/assetbot/core/telegram"
	"github.com/m3rciful/assetbot/core/telegram/middleware"
)

// Conversation receives text from users in the middle of a dialog.
type Conversation interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds handlers for text and media. Users inside a dialog get
// their text routed to conv before command aliases are considered. Admin-only
// commands are reachable only through their slash route.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		if conv != nil && c.Sender() != nil && conv.InProgress(c.Sender().ID) {
			return begin("dialog").run(c, func() error { return conv.HandleText(c) })
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return begin(handlerName(key)).run(c, func() error { return cmd.Handler(c) })
			}
			if fb := reg.TextFallback(); fb != nil {
				return begin("fallback").run(c, func() error { return fb(c) })
			}
		}
		return dispatchOr(c, "unknown_text", opts.UnknownText)
	}
	media := func(c tele.Context) error {
		return dispatchOr(c, "unexpected_media", opts.UnknownMedia)
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnDocument, Handler: wrap(media)},
		{Endpoint: tele.OnPhoto, Handler: wrap(media)},
	}
}

// dispatchOr runs h under name, or logs a skip when h is nil.
func dispatchOr(c tele.Context, name string, h tele.HandlerFunc) error {
	s := begin(name)
	if h == nil {
		s.skip(c)
		return nil
	}
	return s.run(c, func() error { return h(c) })
}
