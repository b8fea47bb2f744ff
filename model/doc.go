// Package model defines provider-agnostic abstractions for driving a
// language model with tool calling, used by the interactive chat simulator
// to exercise an agent's SWAIG functions without a live call.
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the simulator stays decoupled from vendor SDKs. The MockModel
// offers deterministic canned behavior for tests.
package model
