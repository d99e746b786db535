// Package config provides user configuration management for the phonedump project.
//
// This package manages a YAML-based configuration file that stores reviewer-side
// metadata for scanned devices, including nicknames, per-app notes, catalog file
// paths, and application preferences. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/phonedump/config.yaml or $HOME/.config/phonedump/config.yaml
//   - macOS: $HOME/.config/phonedump/config.yaml
//   - Windows: %LOCALAPPDATA%\phonedump\config.yaml
//
// # Privacy
//
// IMPORTANT: This package NEVER stores dump contents. Only paths to dump files
// and the reviewer's own annotations are persisted.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record a scan and annotate an app
//	registry.UpdateDeviceScan("ABC123", "android", "dumps/ABC123.txt")
//	registry.SetAppNote("ABC123", "com.example.tracker", "client does not recognize this", true)
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
