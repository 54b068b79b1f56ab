package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

// replyCounters is shared between the wrapped context and queued sends.
type replyCounters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// metricsContext counts replies sent through the wrapped context.
type metricsContext struct {
	tele.Context
	counters *replyCounters
}

func (m metricsContext) record(opts []interface{}) {
	m.counters.messages.Add(1)
	if hasKeyboard(opts) {
		m.counters.keyboard.Store(true)
	}
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil && !v.ReplyMarkup.RemoveKeyboard {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil && !v.RemoveKeyboard {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send and counts successful sends.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.record(opts)
	}
	return err
}

// Reply proxies tele.Context.Reply and counts successful replies.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.record(opts)
	}
	return err
}

// MessageMetricsMiddleware counts replies and keyboard usage per update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &replyCounters{}
		c.Set(countersKey, counters)
		return next(metricsContext{Context: c, counters: counters})
	}
}

// GetCounters reads the reply count and keyboard flag recorded for the update.
// Replies still waiting in the send queue are not counted yet.
func GetCounters(c tele.Context) (int, bool) {
	counters, ok := c.Get(countersKey).(*replyCounters)
	if !ok || counters == nil {
		return 0, false
	}
	return int(counters.messages.Load()), counters.keyboard.Load()
}
