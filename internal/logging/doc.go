// Package logging provides structured logging for the phonedump tools.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the parser and the report surfaces. CLI
// commands stay silent by default; setting PHONEDUMP_LOG_LEVEL enables
// output.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: detailed parsing info (section boundaries, cache hits)
//   - Info: normal operations (dump parsed, report generated)
//   - Warn: recoverable issues (unparseable section tail, unknown app)
//   - Error: failures surfaced to the caller
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Section parsed",
//	    zap.String("section", "batterystats"),
//	    zap.Int("lines", 1532),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
