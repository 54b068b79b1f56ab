package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/assetbot/core/config"
	coretelegram "github.com/m3rciful/assetbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	calls *[]string
}

func (a fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error {
			*a.calls = append(*a.calls, "app.start")
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			*a.calls = append(*a.calls, "app.stop")
			return nil
		},
	}, nil
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("ASSET_CFG", "/env.yaml")

	got, err := ResolveConfigPath(Options{ConfigPath: "/flag.yaml", ConfigEnvVar: "ASSET_CFG"})
	if err != nil || got != "/flag.yaml" {
		t.Fatalf("flag: %q %v", got, err)
	}
	got, err = ResolveConfigPath(Options{ConfigEnvVar: "ASSET_CFG", DefaultConfigPath: "/def.yaml"})
	if err != nil || got != "/env.yaml" {
		t.Fatalf("env: %q %v", got, err)
	}
	t.Setenv("ASSET_CFG", "")
	got, err = ResolveConfigPath(Options{ConfigEnvVar: "ASSET_CFG", DefaultConfigPath: "/def.yaml"})
	if err != nil || got != "/def.yaml" {
		t.Fatalf("default: %q %v", got, err)
	}
	if _, err := ResolveConfigPath(Options{ConfigEnvVar: "ASSET_CFG"}); err == nil {
		t.Fatal("expected error without any path")
	}
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	var calls []string
	loggerClosed := false
	err := Run(Options{
		ConfigPath: "cfg.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			if path != "cfg.yaml" {
				t.Fatalf("path = %q", path)
			}
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return fakeApp{calls: &calls}, nil
		},
		ShutdownLogger: func() error { loggerClosed = true; return nil },
		RunTelegram: func(ctx context.Context, o coretelegram.RunOptions) error {
			if err := o.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			calls = append(calls, "serve")
			return o.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(calls, ","); got != "app.start,serve,app.stop" {
		t.Fatalf("calls = %s", got)
	}
	if !loggerClosed {
		t.Fatal("logger not shut down")
	}
}

func TestRunReportsLoadAndBootstrapErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		ConfigPath: "x",
		LoadConfig: func(string) (ConfigCarrier, error) { return nil, boom },
		Bootstrap:  func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("load err = %v", err)
	}

	err = Run(Options{
		ConfigPath:     "x",
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: func() error { return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("bootstrap err = %v", err)
	}
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
}
