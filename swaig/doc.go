// Package swaig implements the function calling subsystem that lets the
// platform-hosted model invoke structured capabilities on an agent with schema
// validated arguments, consistent error handling and rich metadata for model
// guidance. It covers the declaration side (what gets advertised inside an
// SWML AI verb) and the execution side (dispatching webhook payloads to
// registered functions and building action-bearing results).
package swaig
