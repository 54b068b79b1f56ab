package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m3rciful/assetbot/core/buildinfo"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), buildinfo.Version) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestCheckRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_TOKEN", "")
	root := newRootCommand()
	root.SetArgs([]string{"--config", path, "check"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestConfigFlagWinsOverEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/from/env.yaml")
	opts := runOptions("/from/flag.yaml")
	if opts.ConfigPath != "/from/flag.yaml" {
		t.Fatalf("config path = %q", opts.ConfigPath)
	}
	if got := runOptions("").DefaultConfigPath; got != defaultConfigPath {
		t.Fatalf("default = %q", got)
	}
}
