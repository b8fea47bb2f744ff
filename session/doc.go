// Package session houses call state storage for agents. A Call tracks the
// mutable global data the platform echoes back into SWAIG webhooks plus an
// ordered function-call event history. The Store interface abstracts the
// backend; the in-memory implementation suits tests and ephemeral demo
// servers while the bbolt implementation survives restarts.
//
// Add additional backends (Redis, Postgres, etc.) in this package without
// changing any calling code – only the wiring layer needs to decide which
// implementation to instantiate.
package session
