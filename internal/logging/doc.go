// Package logging provides structured logging for the reccaster.
//
// This package wraps a global zap logger with convenience functions for the
// events the client produces: state transitions, protocol frames, and
// datagrams that failed to parse.
//
// # Log Levels
//
//   - Debug: every frame sent or received, raw byte dumps
//   - Info: state transitions, connections, announcements
//   - Warn: ignored datagrams, dropped sessions
//   - Error: receive failures, startup failures
//
// # Structured Logging
//
//	logging.Info("Announcement received",
//	    zap.String("server", ann.Endpoint().String()),
//	    zap.Uint32("key", ann.ServerKey),
//	)
//
// Specialized helpers:
//
//	logging.LogTransition("Handshaking", "Uploading", "server greeted")
//	logging.LogFrame(remoteAddr, "sent", "AddRecord", msg.String())
//	logging.LogDatagram(source, data, err)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to RECCASTER_LOG_LEVEL; when that is also empty
// the logger is silent. Output paths (for example a file while the terminal
// UI owns stdout) may be passed after the level.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and SetLogger
// should be called before other goroutines start logging.
package logging
