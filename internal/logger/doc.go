// Package logger provides the leveled logger shared by the enrichment
// pipeline, the CLI and the TUI.
//
// # Console Logger
//
//	log := logger.NewConsoleLogger(os.Stderr, logger.LevelInfo)
//	log = log.WithPrefix("[enrich]").With(map[string]interface{}{"run": runID})
//	log.Info("fetched %d tracks", n)
//
// Colours are emitted only when the destination is a terminal.
//
// # Levels
//
// The level can be taken from the SPOTIFY_ENRICH_LOG_LEVEL environment
// variable (trace, debug, info, warn, error, none) with GetLevelFromEnv, or
// parsed from a flag value with ParseLevel.
//
// # Testing
//
// TestLogger records every entry so tests can assert on warnings such as
// cache I/O fallbacks:
//
//	log := &logger.TestLogger{}
//	// ... exercise code ...
//	if !log.Has("WARN", "cache read failed") { ... }
package logger
