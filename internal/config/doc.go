// Package config handles configuration loading and merging for flowtail.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (-quiet-period-ms, -max-buffer-bytes, -max-lines, -no-color, -tui)
//  2. Environment variables (FLOWTAIL_NO_COLOR, NO_COLOR, FLOWTAIL_DEBUG, FLOWTAIL_QUIET_PERIOD_MS)
//  3. YAML config file (.flowtail.yaml in local directory or ~/.config/flowtail/.flowtail.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Key Configuration Options
//
//   - QuietPeriodMs: the debounce window; a flush fires only after this much
//     time passes without a new ingest for an execution
//   - MaxBufferBytes: the forced-flush ceiling for a pending buffer
//   - MaxLines: total retained lines per execution before truncation
//   - FinalizeStatus: terminal label applied to nodes whose completion marker
//     never arrived when the producer finalizes the execution
//   - NoColor: disables all ANSI colors
//   - TUI: opens the interactive dashboard instead of the plain stream view
package config
