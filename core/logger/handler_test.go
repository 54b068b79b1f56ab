package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the writer goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T, format logFormat, sinks ...sink) (*slog.Logger, *asyncWriter) {
	t.Helper()
	aw := newAsyncWriter(sinks, 16)
	t.Cleanup(func() { _ = aw.Close() })
	return slog.New(newHandler(handlerOptions{
		level:  slog.LevelDebug,
		out:    aw,
		format: format,
	})), aw
}

func TestKVLineOrder(t *testing.T) {
	buf := &syncBuffer{}
	log, aw := newTestLogger(t, formatKV, sink{w: buf})

	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-123"), 42, 7, 9)
	LogEvent(ctx, log.With("component", "flow"), slog.LevelInfo, "flow.advance",
		slog.String("status", "ok"),
		slog.String("step", "quantity"),
		slog.String("cause", "unit test"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	tokens := strings.Fields(strings.TrimSpace(buf.String()))
	want := []string{"ts=", "level=INFO", "component=flow", "event=flow.advance", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "step=quantity"}
	if len(tokens) < len(want) {
		t.Fatalf("short line: %s", buf.String())
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, want prefix %s (line %s)", i, tokens[i], prefix, buf.String())
		}
	}
	if !strings.Contains(buf.String(), `cause="unit test"`) {
		t.Fatalf("value with space not quoted: %s", buf.String())
	}
}

func TestJSONLineCompactsRID(t *testing.T) {
	buf := &syncBuffer{}
	log, aw := newTestLogger(t, formatJSON, sink{w: buf})

	ctx := WithRID(context.Background(), BuildRID(100, 200, 300))
	LogEvent(ctx, log, slog.LevelError, "submit.append",
		slog.Any("err", errors.New("boom")),
		slog.Duration("took", 1500*time.Microsecond),
		slog.String("empty", ""),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("invalid json %q: %v", line, err)
	}
	if got["rid"] != "2s:5k:8c" || got["rid_full"] != "100:200:300" {
		t.Fatalf("rid = %v / %v", got["rid"], got["rid_full"])
	}
	if got["err"] != "boom" || got["component"] != "app" || got["level"] != "ERROR" {
		t.Fatalf("unexpected fields: %v", got)
	}
	if got["took_ms"] != float64(2) {
		t.Fatalf("took_ms = %v", got["took_ms"])
	}
	if _, ok := got["empty"]; ok {
		t.Fatal("empty string kept")
	}
	if !strings.HasPrefix(line, `{"ts":`) {
		t.Fatalf("ts not first: %s", line)
	}
}

func TestGroupsAndStatusAliases(t *testing.T) {
	buf := &syncBuffer{}
	log, aw := newTestLogger(t, formatKV, sink{w: buf})

	log.With(slog.String("status", "Error")).
		WithGroup("store").
		With(slog.String("backend", "sqlite")).
		Info("store.check", slog.Group("db", slog.Int("rows", 3)))
	_ = aw.Flush()

	line := buf.String()
	for _, want := range []string{"event=store.check", "status=fail", "store.backend=sqlite", "store.db.rows=3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %s", want, line)
		}
	}
}

func TestErrorsSinkGetsOnlyErrors(t *testing.T) {
	all, errs := &syncBuffer{}, &syncBuffer{}
	log, aw := newTestLogger(t, formatKV, sink{w: all, min: slog.LevelDebug}, sink{w: errs, min: slog.LevelError})

	log.Debug("d")
	log.Info("i")
	log.Error("e")
	_ = aw.Flush()

	if n := strings.Count(all.String(), "\n"); n != 3 {
		t.Fatalf("all sink lines = %d", n)
	}
	if strings.Count(errs.String(), "\n") != 1 || !strings.Contains(errs.String(), "event=e") {
		t.Fatalf("errors sink = %q", errs.String())
	}
}

func TestWriterRejectsAfterClose(t *testing.T) {
	aw := newAsyncWriter([]sink{{w: &syncBuffer{}}}, 1)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := aw.Write(slog.LevelInfo, []byte("x\n")); !errors.Is(err, errWriterClosed) {
		t.Fatalf("write after close = %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestHelpersAreSilentBeforeInit(t *testing.T) {
	if L != nil {
		t.Skip("global logger already initialized")
	}
	Info(context.Background(), "flow", "noop")
	if Component("flow") != nil {
		t.Fatal("component logger without init")
	}
}
