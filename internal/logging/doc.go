// Package logging provides the ambient, process-wide structured
// logger used by cmd/ entry points and other outer-surface code.
//
// This package wraps zap with convenience functions for the logging
// patterns common across the companion client: frame tracing, decoded
// event tracing, and command dispatch. session.Session never reads
// this package directly — it takes an injected *zap.Logger via
// session.WithLogger, so multiple sessions in one process can log to
// independent sinks. This package exists for code that runs before any
// Session is constructed (CLI startup, discovery) and for demo tools
// that are happy sharing one global sink.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: frame hex dumps, decoded event tracing
//   - Info: connection lifecycle, state changes
//   - Warn: non-fatal issues (out-of-order replies, dropped events)
//   - Error: startup failures, unrecoverable errors
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("radio connected",
//	    zap.String("addr", "192.168.1.100:5000"),
//	    zap.String("client_id", "CLI01"),
//	)
//
// # Specialized Logging
//
// Connection Logging:
//
//	logging.LogConnection(addr, "connected")
//	logging.LogConnection(addr, "disconnected")
//
// Frame Logging:
//
//	logging.LogFrame("rx", frame[0], len(frame), frame)
//
// # Configuration
//
// Initialize logging at process startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// MESHCORE_LOG_LEVEL selects the level ("debug", "info", "warn",
// "error"); unset means silent.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
