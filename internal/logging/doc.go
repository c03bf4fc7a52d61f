// Package logging provides the module-scoped logging system for lumenode.
//
// Each subsystem obtains its logger through GetLogger("name"); the returned
// *slog.Logger carries a "module" attribute and a per-module level that can
// be changed at runtime. Records fan out to stdout (text or JSON), to the
// systemd journal when one is attached, and to an in-memory ring buffer of
// recent entries that the API exposes for diagnostics.
//
//	logger := logging.GetLogger("link")
//	logger.Info("connected", "port", "/dev/ttyUSB0")
//
// Initialize must be called once at startup with the resolved configuration;
// loggers created before Initialize are re-leveled and re-wired when it runs.
package logging
