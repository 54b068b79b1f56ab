// Package logger is the structured slog setup shared by every component:
// key-ordered KV or JSON lines, asynchronous sinks, and request metadata
// carried in context.Context.
package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/assetbot/core/buildinfo"
	coreconfig "github.com/m3rciful/assetbot/core/config"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	out     *asyncWriter
	closers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger. It stays nil until InitLogger runs; the
	// package-level helpers below are no-ops until then.
	L *slog.Logger
)

// InitLogger configures the global structured logger. Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))
		debugSampler.Set(parseDebugSample(cfg))
		traceOverride = envTruthy("TRACE") || envTruthy("LOG_TRACE")

		sinks, files, err := openSinks(cfg)
		if err != nil {
			initErr = err
			return
		}
		closers = files
		out = newAsyncWriter(sinks, 256)

		L = slog.New(newHandler(handlerOptions{
			level:    &levelVar,
			out:      out,
			format:   selectFormat(cfg),
			keyOrder: selectKeyOrder(cfg),
		}))
		slog.SetDefault(L)

		attrs := []slog.Attr{
			slog.String("go_version", runtime.Version()),
			slog.String("version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", selectProfile(cfg)),
		}
		Info(context.Background(), "app", "startup", attrs...)
	})
	return initErr
}

// Shutdown drains queued lines and closes log files. Safe to call more than once.
func Shutdown() error {
	var err error
	stopOnce.Do(func() {
		var errs []error
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		err = errors.Join(errs...)
	})
	return err
}

func selectFormat(cfg *coreconfig.Config) logFormat {
	if cfg == nil {
		return formatJSON
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch selectProfile(cfg) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func selectKeyOrder(cfg *coreconfig.Config) []string {
	var raw string
	if cfg != nil {
		raw = strings.TrimSpace(cfg.Logging.KeysOrder)
	}
	var order []string
	if raw != "" && raw != "default" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func selectProfile(cfg *coreconfig.Config) string {
	if cfg != nil {
		if p := strings.TrimSpace(cfg.Logging.Profile); p != "" {
			return strings.ToLower(p)
		}
	}
	return "prod"
}

// openSinks returns stdout plus the optional bot and errors files under logging.dir.
// A file that cannot be opened is reported on stderr and skipped.
func openSinks(cfg *coreconfig.Config) ([]sink, []io.Closer, error) {
	sinks := []sink{{w: os.Stdout, min: slog.LevelDebug}}
	if cfg == nil {
		return sinks, nil, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	if dir == "" {
		return sinks, nil, nil
	}

	var files []io.Closer
	add := func(name string, min slog.Level) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("logger: create log dir %s: %v", dir, err)
			return
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("logger: open log file %s: %v", path, err)
			return
		}
		sinks = append(sinks, sink{w: f, min: min})
		files = append(files, f)
	}
	add(cfg.Logging.BotFile, slog.LevelDebug)
	add(cfg.Logging.ErrorsFile, slog.LevelError)
	return sinks, files, nil
}

func parseDebugSample(cfg *coreconfig.Config) (int, int) {
	if cfg == nil || strings.TrimSpace(cfg.Logging.DebugSample) == "" {
		return 1, 50
	}
	return parseRatioSpec(cfg.Logging.DebugSample)
}

func envTruthy(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug event should be logged.
// TRACE=1 lets every event through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}

// LogEvent writes one event through logg, falling back to the context logger and then L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to name, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

func emit(ctx context.Context, component string, level slog.Level, event string, attrs []slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug event for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelDebug, event, attrs)
}

// Info logs an info event for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelInfo, event, attrs)
}

// Warn logs a warning event for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelWarn, event, attrs)
}

// Error logs an error event for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelError, event, attrs)
}
