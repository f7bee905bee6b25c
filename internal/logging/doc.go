// Package logging provides structured logging for doorctl.
//
// This package wraps zap logger with convenience functions for common
// logging patterns used throughout the CLI and the API server.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (panel request attempts, challenge parsing)
//   - Info: Normal operations (completed door commands, API requests)
//   - Warn: Non-fatal issues (failed steps, unwritable audit log)
//   - Error: Fatal issues (startup failures, critical orchestration errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("door control completed",
//	    zap.String("host", "192.168.1.100"),
//	    zap.Int("door", 1),
//	    zap.String("state", "open"),
//	)
//
// # Configuration
//
// CLI commands are silent by default; set DOORCTL_LOG_LEVEL to enable
// output. The server initializes logging explicitly at startup:
//
//	if err := logging.Initialize("info"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
