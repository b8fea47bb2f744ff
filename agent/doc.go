// Package agent contains the agent definition layer: named agents composed of
// structured prompt sections, voice languages, AI params, global data and a
// SWAIG function registry. The package focuses on three concerns:
//
//  1. Declarative agent construction (sections, languages, params, functions)
//  2. Deterministic SWML document rendering for the platform
//  3. Dispatching SWAIG webhook payloads to registered functions
//
// Design principles:
//   - Minimal hidden global state – explicit wiring via the server package
//   - Composability – sections may be static or resolved per call via Provider
//   - Observability – logging hooks around render and dispatch
//
// The package intentionally keeps persistence, HTTP serving and model
// specifics in their respective packages to avoid cyclic deps.
package agent
