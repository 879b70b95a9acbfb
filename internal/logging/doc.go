// Package logging provides structured logging for orbis-ime.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the dialog session, the controller and the rendering
// hosts. Logging is silent unless a level is configured, so the terminal
// host can draw without log lines interleaving with the dialog.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Per-key and per-frame detail (filter verdicts, truncation)
//   - Info: Dialog lifecycle (opened, confirmed, cancelled, closed)
//   - Warn: Recoverable failures (conversion errors, dropped input)
//   - Error: Host failures (listener errors, broken connections)
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Dialog confirmed",
//	    zap.Int32("user_id", 1),
//	    zap.Int("length", 8),
//	)
//
// # Specialized Logging
//
// Dialog lifecycle:
//
//	logging.LogDialogEvent(userID, "opened")
//	logging.LogDialogEvent(userID, "confirmed", zap.Int("length", n))
//
// Key events (debug level only):
//
//	logging.LogKeystroke(userID, code, char, status)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize(level); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to the ORBIS_IME_LOG_LEVEL environment variable.
// When neither is set a no-op logger is installed. Output goes to stderr so
// it never mixes with a dialog drawn on stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
