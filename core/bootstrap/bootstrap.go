// Package bootstrap initializes logging and runs startup checks shared between bots.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/assetbot/core/config"
	"github.com/m3rciful/assetbot/core/logger"
)

// Check is a named startup probe. A failing check aborts startup.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Options control the generic bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Checks     []Check
	// CheckTimeout bounds each check; zero means 15 seconds.
	CheckTimeout time.Duration
}

// Run initializes the logger and then runs every check in order.
func Run(ctx context.Context, opts Options) error {
	if opts.Config == nil {
		return fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	return RunChecks(ctx, opts.Checks, opts.CheckTimeout)
}

// RunChecks executes checks sequentially and stops at the first failure.
func RunChecks(ctx context.Context, checks []Check, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	for _, c := range checks {
		if c.Run == nil {
			continue
		}
		start := time.Now()
		cctx, cancel := context.WithTimeout(ctx, timeout)
		err := c.Run(cctx)
		cancel()

		attrs := []slog.Attr{
			slog.String("check", c.Name),
			slog.String("status", logger.Status(err)),
			slog.Duration("took", logger.Took(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("err", err.Error()))
			logger.Error(ctx, "app", "check", attrs...)
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("bootstrap: check %s timed out after %s: %w", c.Name, timeout, err)
			}
			return fmt.Errorf("bootstrap: check %s failed: %w", c.Name, err)
		}
		logger.Info(ctx, "app", "check", attrs...)
	}
	return nil
}
