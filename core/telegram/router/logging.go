package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/assetbot/core/logger"
	tghelpers "github.com/m3rciful/assetbot/core/telegram/helpers"
	"github.com/m3rciful/assetbot/core/telegram/middleware"
)

// summary is the one handler.handled line written per routed update.
type summary struct {
	handler string
	start   time.Time
}

func begin(handler string) summary {
	return summary{handler: handler, start: timeNow()}
}

// run calls fn under the handler name and logs its result.
func (s summary) run(c tele.Context, fn func() error) error {
	tghelpers.WithHandler(c, s.handler)
	err := fn()
	status := "ok"
	if err != nil {
		status = "fail"
	}
	s.log(c, status, status, err)
	return err
}

// skip records an update no handler wanted.
func (s summary) skip(c tele.Context) {
	s.log(c, "skip", "ok", nil)
}

func (s summary) log(c tele.Context, status, outcome string, err error) {
	ctx := tghelpers.WithHandler(c, s.handler)
	msgs, kb := middleware.GetCounters(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", s.handler),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", timeNow().Sub(s.start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

// handlerName turns "/Sessions " into "sessions".
func handlerName(endpoint string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(endpoint), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.Join(strings.Fields(name), "_")
}

// errorCode prefers an explicit Code() and falls back to the error's type name.
func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.Join(strings.Fields(code), "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}

var timeNow = time.Now
