package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/assetbot/core/config"
)

func noopLogger(*coreconfig.Config) error { return nil }

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background(), Options{LoggerInit: noopLogger}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunStopsAtFirstFailingCheck(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noopLogger,
		Checks: []Check{
			{Name: "a", Run: func(context.Context) error { ran = append(ran, "a"); return nil }},
			{Name: "b", Run: func(context.Context) error { ran = append(ran, "b"); return boom }},
			{Name: "c", Run: func(context.Context) error { ran = append(ran, "c"); return nil }},
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if strings.Join(ran, ",") != "a,b" {
		t.Fatalf("unexpected checks ran: %v", ran)
	}
}

func TestRunChecksAppliesTimeout(t *testing.T) {
	slow := Check{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	err := RunChecks(context.Background(), []Check{slow}, 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if !strings.Contains(err.Error(), "slow") {
		t.Fatalf("error does not name the check: %v", err)
	}
}

func TestLoggerFailureAborts(t *testing.T) {
	err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("no sink") },
		Checks: []Check{{Name: "never", Run: func(context.Context) error {
			t.Fatal("check ran after logger failure")
			return nil
		}}},
	})
	if err == nil || !strings.Contains(err.Error(), "logger init") {
		t.Fatalf("unexpected error: %v", err)
	}
}
