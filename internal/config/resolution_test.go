package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	tempDir := chdirTemp(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "missing"))
	t.Setenv("HOME", filepath.Join(tempDir, "home"))
	t.Setenv("FLOWTAIL_NO_COLOR", "")
	t.Setenv("NO_COLOR", "")
	t.Setenv("FLOWTAIL_DEBUG", "")
	t.Setenv("FLOWTAIL_QUIET_PERIOD_MS", "")
}

func TestResolveConfig_Defaults_When_NothingSet(t *testing.T) {
	isolate(t)

	resolved := ResolveConfig(CliFlags{})

	if resolved.QuietPeriod != 100*time.Millisecond {
		t.Errorf("QuietPeriod = %v, want 100ms", resolved.QuietPeriod)
	}
	if resolved.MaxBufferBytes != DefaultMaxBufferBytes {
		t.Errorf("MaxBufferBytes = %d, want %d", resolved.MaxBufferBytes, DefaultMaxBufferBytes)
	}
	if resolved.NoColor {
		t.Error("NoColor should default to false")
	}
}

func TestResolveConfig_CLIBeatsFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".flowtail.yaml", []byte("quiet_period_ms: 300\nmax_lines: 99\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resolved := ResolveConfig(CliFlags{QuietPeriodMs: 50, MaxLines: 1234})

	if resolved.QuietPeriod != 50*time.Millisecond {
		t.Errorf("QuietPeriod = %v, want 50ms (CLI wins)", resolved.QuietPeriod)
	}
	if resolved.MaxLines != 1234 {
		t.Errorf("MaxLines = %d, want 1234 (CLI wins)", resolved.MaxLines)
	}
}

func TestResolveConfig_EnvBeatsFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".flowtail.yaml", []byte("quiet_period_ms: 300\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("FLOWTAIL_QUIET_PERIOD_MS", "75")

	resolved := ResolveConfig(CliFlags{})

	if resolved.QuietPeriod != 75*time.Millisecond {
		t.Errorf("QuietPeriod = %v, want 75ms (env wins over file)", resolved.QuietPeriod)
	}
}

func TestResolveConfig_CLIBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FLOWTAIL_QUIET_PERIOD_MS", "75")

	resolved := ResolveConfig(CliFlags{QuietPeriodMs: 20})

	if resolved.QuietPeriod != 20*time.Millisecond {
		t.Errorf("QuietPeriod = %v, want 20ms (CLI wins over env)", resolved.QuietPeriod)
	}
}

func TestResolveConfig_NoColor_FromStandardEnvVar(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	resolved := ResolveConfig(CliFlags{})

	if !resolved.NoColor {
		t.Error("NO_COLOR=1 should disable color")
	}
}

func TestResolveConfig_NoColorFlag_BeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	resolved := ResolveConfig(CliFlags{NoColor: false, NoColorSet: true})

	if resolved.NoColor {
		t.Error("explicit --no-color=false must win over NO_COLOR env")
	}
}

func TestResolveConfig_FinalizeStatus_FromFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".flowtail.yaml", []byte("finalize_status: failed\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resolved := ResolveConfig(CliFlags{})

	if resolved.FinalizeStatus != "failed" {
		t.Errorf("FinalizeStatus = %q, want %q", resolved.FinalizeStatus, "failed")
	}
}
