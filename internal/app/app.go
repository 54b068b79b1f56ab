// Package app wires configuration, storage, the questionnaire engine and the
// Telegram runtime together.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/assetbot/core/bootstrap"
	"github.com/m3rciful/assetbot/core/logger"
	coretelegram "github.com/m3rciful/assetbot/core/telegram"
	"github.com/m3rciful/assetbot/core/telegram/sender"
	"github.com/m3rciful/assetbot/internal/bot"
	"github.com/m3rciful/assetbot/internal/catalog"
	"github.com/m3rciful/assetbot/internal/engine"
	"github.com/m3rciful/assetbot/internal/session"
	"github.com/m3rciful/assetbot/internal/submit"
)

// App holds the wired components of a running bot.
type App struct {
	cfg      *Config
	store    submit.TableStore
	close    func() error
	engine   *engine.Engine
	bot      *bot.Bot
	registry *coretelegram.Registry
}

// Bootstrap initializes logging, opens the configured store, verifies it is
// reachable and builds the engine.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if err := bootstrap.Run(ctx, bootstrap.Options{Config: &cfg.Config}); err != nil {
		return nil, err
	}
	a, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Check(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Build opens the store and wires the engine without running checks.
func Build(ctx context.Context, cfg *Config) (*App, error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Storage.TimeoutSeconds) * time.Second
	eng := engine.New(
		catalog.Default(),
		session.NewMemoryStore(),
		submit.New(store),
		engine.WithSubmitTimeout(timeout),
	)

	reg := coretelegram.NewRegistry()
	b := bot.New(eng, cfg.Telegram.AdminID)
	b.Register(reg)

	return &App{
		cfg:      cfg,
		store:    store,
		close:    closeStore,
		engine:   eng,
		bot:      b,
		registry: reg,
	}, nil
}

// Check verifies the store answers within the storage timeout.
func (a *App) Check(ctx context.Context) error {
	return bootstrap.RunChecks(ctx, []bootstrap.Check{
		{Name: "store." + a.cfg.Storage.Backend, Run: a.store.Check},
	}, time.Duration(a.cfg.Storage.TimeoutSeconds)*time.Second)
}

// Close releases the store.
func (a *App) Close() error {
	return a.close()
}

// Engine returns the questionnaire engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// ErrNotBuilt is returned for an App that did not come from Build.
var ErrNotBuilt = errors.New("app: not built")

// TelegramRunOptions assembles routes and middlewares for the bot runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a == nil || a.cfg == nil || a.bot == nil || a.registry == nil {
		return coretelegram.RunOptions{}, ErrNotBuilt
	}
	return coretelegram.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          a.registry,
		DispatcherOptions: sender.Options{MaxRetries: 2},
		Middlewares:       coretelegram.DefaultMiddlewares(&a.cfg.Config, a.bot.Limited),
		Routes:            a.bot.Routes(a.registry),
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			logger.Info(ctx, "app", "store.close",
				slog.String("backend", a.cfg.Storage.Backend),
				slog.Int("sessions", a.engine.Sessions()),
				slog.Int("pending", rt.Dispatcher.Pending()),
			)
			return a.Close()
		},
	}, nil
}
