// Package server exposes registered agents over HTTP. Each agent mounts two
// endpoints under its route: the document endpoint returning rendered SWML
// and the /swaig endpoint dispatching function webhooks. Routes are protected
// with HTTP basic auth; credentials are generated at startup when not
// supplied so an agent is never accidentally exposed unauthenticated.
package server
