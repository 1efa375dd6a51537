package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the application's configuration from .flowtail.yaml.
type AppConfig struct {
	QuietPeriodMs  int    `yaml:"quiet_period_ms"`
	MaxBufferBytes int    `yaml:"max_buffer_bytes"`
	MaxLines       int    `yaml:"max_lines"`
	FinalizeStatus string `yaml:"finalize_status"`
	NoColor        bool   `yaml:"no_color"`
	Debug          bool   `yaml:"debug"`
	TUI            bool   `yaml:"tui"`
}

// Constants for default values.
const (
	DefaultQuietPeriodMs  = 100
	DefaultMaxBufferBytes = 50 * 1024
	DefaultMaxLines       = 10000
	DefaultFinalizeStatus = "interrupted"
)

// LoadConfig loads the .flowtail.yaml configuration, falling back to
// defaults when no file is found or the file is unreadable. A broken
// config file warns and falls back; it never aborts the program.
func LoadConfig() *AppConfig {
	appCfg := &AppConfig{
		QuietPeriodMs:  DefaultQuietPeriodMs,
		MaxBufferBytes: DefaultMaxBufferBytes,
		MaxLines:       DefaultMaxLines,
		FinalizeStatus: DefaultFinalizeStatus,
	}

	configPath := getConfigPath()
	if configPath == "" {
		return appCfg
	}

	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file %s: %v. Using defaults.\n", configPath, err)
		}
		return appCfg
	}

	var fileCfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error unmarshalling config file %s: %v. Using defaults.\n", configPath, err)
		return appCfg
	}

	if fileCfg.QuietPeriodMs > 0 {
		appCfg.QuietPeriodMs = fileCfg.QuietPeriodMs
	}
	if fileCfg.MaxBufferBytes > 0 {
		appCfg.MaxBufferBytes = fileCfg.MaxBufferBytes
	}
	if fileCfg.MaxLines > 0 {
		appCfg.MaxLines = fileCfg.MaxLines
	}
	if fileCfg.FinalizeStatus != "" {
		appCfg.FinalizeStatus = fileCfg.FinalizeStatus
	}
	appCfg.NoColor = fileCfg.NoColor
	appCfg.Debug = fileCfg.Debug
	appCfg.TUI = fileCfg.TUI

	return appCfg
}

// getConfigPath tries to find the .flowtail.yaml configuration file.
// It checks the local directory first, then the user config dir.
func getConfigPath() string {
	localPath := ".flowtail.yaml"
	if _, err := os.Stat(localPath); err == nil {
		return localPath
	}

	configHome, err := os.UserConfigDir()
	if err == nil && configHome != "" && configHome != "/" {
		xdgPath := filepath.Join(configHome, "flowtail", ".flowtail.yaml")
		if _, errStat := os.Stat(xdgPath); errStat == nil {
			return xdgPath
		}
	}
	return ""
}
