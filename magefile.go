//go:build mage

package main

import (
	"fmt"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target - build the binary
var Default = Build

// Build builds the flowtail binary with version metadata.
func Build() error {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	ldflags := fmt.Sprintf(
		"-X github.com/flowtail/flowtail/internal/version.Version=%s "+
			"-X github.com/flowtail/flowtail/internal/version.CommitHash=%s "+
			"-X github.com/flowtail/flowtail/internal/version.BuildDate=%s",
		version, commit, time.Now().UTC().Format(time.RFC3339))
	return sh.Run("go", "build", "-ldflags", ldflags, "-o", "bin/flowtail", "./cmd/flowtail")
}

// Test runs the full test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet across the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs lint and tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}
