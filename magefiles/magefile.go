//go:build mage

// Package main provides build targets for assetbot using Mage.
//
// Usage:
//
//	mage build    Compile the assetbot binary to bin/ with build info
//	mage test     Run all tests with the race detector
//	mage lint     Run go vet and golangci-lint
//	mage check    Build, then verify the configured store answers
//	mage clean    Remove build artifacts
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "assetbot"
	binaryDir  = "bin"
	cmdDir     = "./cmd/assetbot"
	infoPkg    = "github.com/m3rciful/assetbot/core/buildinfo"
)

func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || commit == "" {
		commit = "local"
	}
	flags := []string{
		fmt.Sprintf("-X '%s.Version=%s'", infoPkg, version),
		fmt.Sprintf("-X '%s.Commit=%s'", infoPkg, commit),
		fmt.Sprintf("-X '%s.Date=%s'", infoPkg, time.Now().UTC().Format(time.RFC3339)),
	}
	return strings.Join(flags, " ")
}

// Build compiles the assetbot binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Check builds the binary and runs its startup checks against CONFIG_PATH.
func Check() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "check")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
