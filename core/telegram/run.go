package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/assetbot/core/config"
	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/core/netutil"
	tghelpers "github.com/m3rciful/assetbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/assetbot/core/telegram/sender"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint: a command string or one of
// the tele.On* constants.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions configures RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher is created from DispatcherOptions when nil.
	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// DisableWebhookCleanup keeps a stale webhook in place in long-poll mode.
	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is what lifecycle hooks get to see.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram starts the bot and blocks until ctx is cancelled. OnStop runs
// before the dispatcher drains, with a context that is no longer cancelled.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bot, err := newBot(ctx, opts.Config, !opts.DisableWebhookCleanup)
	if err != nil {
		return err
	}

	rt := Runtime{Dispatcher: opts.Dispatcher, Registry: opts.Registry}
	if rt.Registry == nil {
		rt.Registry = NewRegistry()
	}
	if rt.Dispatcher == nil {
		rt.Dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(rt.Dispatcher)
	defer func() {
		rt.Dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	SetupCommands(bot, rt.Registry)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)

	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	return runErr
}

// serve runs the poller until it returns or ctx ends. Plain cancellation is
// the normal way out and is not an error.
func serve(ctx context.Context, bot *tele.Bot) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		bot.Start()
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
	}
	bot.Stop()
	<-stopped
	if err := ctx.Err(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newBot builds the telebot instance for the configured run mode. In
// long-poll mode a leftover webhook is removed so getUpdates is allowed.
func newBot(ctx context.Context, cfg *coreconfig.Config, cleanup bool) (*tele.Bot, error) {
	poller := BuildPoller(pollerOptions(cfg))
	// getUpdates holds the response for the long-poll timeout.
	wait := time.Duration(pollTimeoutSeconds(cfg)) * time.Second

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: netutil.NewClient(netutil.ClientOptions{
			ResponseTimeout: wait + 5*time.Second,
			Timeout:         wait + 20*time.Second,
		}),
		ParseMode: tele.ModeHTML,
		OnError:   onBotError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	took := slog.Duration("took", time.Since(start))

	wh, isWebhook := poller.(*tele.Webhook)
	if isWebhook {
		logger.Info(ctx, "tg", "mode", took,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
		)
		return bot, nil
	}

	logger.Info(ctx, "tg", "mode", took,
		slog.String("mode", coreconfig.RunModeLongpoll),
		slog.Int("timeout_seconds", pollTimeoutSeconds(cfg)),
	)
	if cleanup {
		if err := bot.RemoveWebhook(false); err != nil {
			logger.Warn(ctx, "tg", "delete_webhook", slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		} else {
			logger.Info(ctx, "tg", "delete_webhook", slog.String("status", "ok"))
		}
	}
	return bot, nil
}

func pollerOptions(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: pollTimeoutSeconds(cfg),
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}
}

func pollTimeoutSeconds(cfg *coreconfig.Config) int {
	if s := cfg.Telegram.LongPollTimeoutSeconds; s > 0 {
		return s
	}
	return 10
}

// onBotError logs errors telebot could not hand back to a handler.
func onBotError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "bot.error", slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
}
