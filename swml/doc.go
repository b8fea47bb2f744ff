// Package swml models SWML documents: the JSON markup a telephony platform
// executes to drive a call. A Document holds named sections of verbs; the AI
// verb carries the agent prompt, voice languages and SWAIG function
// declarations. Rendering is deterministic so identical agents always emit
// byte-identical documents.
package swml
