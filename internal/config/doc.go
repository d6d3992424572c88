// Package config provides configuration management for spotify-enrich.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Environment overrides for secrets and deployment paths
//   - Conversion to the requester and cache configurations
//
// # Default Settings
//
// Use DefaultSettings() to get the defaults:
//
//	settings := config.DefaultSettings()
//	// 3 retries with a 1s backoff unit, 60s wait when a 429 has no hint
//	// batches of 20 IDs, 2 workers, 200ms between batches
//	// file cache under data/cache, entries valid for 24 hours
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	settings.ApplyEnv()
//	if err := settings.Validate(); err != nil {
//	    // errors.Is(err, config.ErrInvalidSettings)
//	}
//
// # Durations
//
// Delay options accept Go duration strings plus days and weeks ("200ms",
// "1m30s", "1d"). A bare number is read as seconds.
package config
