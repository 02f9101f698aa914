// Package logging provides a minimal logging interface and adapters for meshcore.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that mailboxes and the router use for observability. Arguments after the
// message are key/value pairs. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping a zap SugaredLogger
//   - MeshLogger with contextual helpers (component, mailbox) and route logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	router := mail.NewManager(func(o *mail.ManagerOptions) { o.Logger = logger })
package logging
