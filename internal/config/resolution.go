package config

import (
	"os"
	"strconv"
	"time"
)

// CliFlags holds the values of command-line flags, plus markers for
// which flags the user set explicitly.
type CliFlags struct {
	QuietPeriodMs  int
	MaxBufferBytes int
	MaxLines       int
	FinalizeStatus string
	NoColor        bool
	Debug          bool
	TUI            bool

	NoColorSet bool
	DebugSet   bool
	TUISet     bool
}

// ResolvedConfig holds the final configuration after applying all
// priority rules.
//
// Priority order (highest to lowest):
//  1. CLI flags — explicit user intent
//  2. Environment variables (FLOWTAIL_NO_COLOR, NO_COLOR, FLOWTAIL_DEBUG,
//     FLOWTAIL_QUIET_PERIOD_MS)
//  3. .flowtail.yaml configuration file
//  4. Package defaults
type ResolvedConfig struct {
	QuietPeriod    time.Duration
	MaxBufferBytes int
	MaxLines       int
	FinalizeStatus string
	NoColor        bool
	Debug          bool
	TUI            bool
}

// ResolveConfig resolves configuration from all sources. This is the
// single source of truth for config resolution.
func ResolveConfig(cliFlags CliFlags) *ResolvedConfig {
	appCfg := LoadConfig()

	resolved := &ResolvedConfig{
		QuietPeriod:    time.Duration(appCfg.QuietPeriodMs) * time.Millisecond,
		MaxBufferBytes: appCfg.MaxBufferBytes,
		MaxLines:       appCfg.MaxLines,
		FinalizeStatus: appCfg.FinalizeStatus,
		NoColor:        appCfg.NoColor,
		Debug:          appCfg.Debug,
		TUI:            appCfg.TUI,
	}

	if env := getEnvInt("FLOWTAIL_QUIET_PERIOD_MS"); env != nil && *env > 0 {
		resolved.QuietPeriod = time.Duration(*env) * time.Millisecond
	}
	if cliFlags.QuietPeriodMs > 0 {
		resolved.QuietPeriod = time.Duration(cliFlags.QuietPeriodMs) * time.Millisecond
	}

	if cliFlags.MaxBufferBytes > 0 {
		resolved.MaxBufferBytes = cliFlags.MaxBufferBytes
	}
	if cliFlags.MaxLines > 0 {
		resolved.MaxLines = cliFlags.MaxLines
	}
	if cliFlags.FinalizeStatus != "" {
		resolved.FinalizeStatus = cliFlags.FinalizeStatus
	}

	if cliFlags.NoColorSet {
		resolved.NoColor = cliFlags.NoColor
	} else if env := getEnvBool("FLOWTAIL_NO_COLOR", "NO_COLOR"); env != nil {
		resolved.NoColor = *env
	}

	if cliFlags.DebugSet {
		resolved.Debug = cliFlags.Debug
	} else if os.Getenv("FLOWTAIL_DEBUG") != "" {
		resolved.Debug = true
	}

	if cliFlags.TUISet {
		resolved.TUI = cliFlags.TUI
	}

	return resolved
}

// getEnvBool checks the named environment variables in order and
// returns the first that parses as a bool. Non-empty unparseable values
// count as true, matching NO_COLOR convention.
func getEnvBool(names ...string) *bool {
	for _, name := range names {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			b = true
		}
		return &b
	}
	return nil
}

func getEnvInt(name string) *int {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
