// Package logging provides slog loggers with per-module level configuration.
//
// Initialize once at startup, then fetch a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"dispatcher": "debug",
//			"capture":    "warn",
//		},
//	})
//
//	logger := logging.GetLogger("dispatcher")
//	logger.Info("Device list requested", "kind", "audio")
//
// Loggers created before Initialize start at info level and are updated in
// place when Initialize runs, so package-level loggers are safe. Calling
// Initialize again (for example after a config reload) changes levels at
// runtime.
//
// Records go to stdout when it is attached to something, and to the systemd
// journal (SYSLOG_IDENTIFIER=capturehost) when journald is reachable:
//
//	journalctl -t capturehost MODULE=capture
package logging
