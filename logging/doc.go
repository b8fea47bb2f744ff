// Package logging provides a minimal logging interface and adapters for CallMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the server and agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - CallLogger with contextual helpers for calls and SWAIG functions
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	srv := server.New(func(o *server.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
