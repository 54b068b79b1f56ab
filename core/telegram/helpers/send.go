package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d. With nil they run inline.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// deliver queues run on the dispatcher. A full or closed queue degrades to
// sending inline so the reply is not lost.
func deliver(c tele.Context, action, endpoint string, run func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.Any("err", err),
		)
		return run()
	}
	return err
}

// SendText sends text to the current chat. Only the first opts is used.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	args := make([]interface{}, 0, 1)
	if len(opts) > 0 && opts[0] != nil {
		args = append(args, opts[0])
	}
	return deliver(c, "send.text", "sendMessage", func() error {
		return c.Send(text, args...)
	})
}

// SendHTML sends an HTML message without link previews. markup may be omitted.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return SendText(c, text, opts)
}
