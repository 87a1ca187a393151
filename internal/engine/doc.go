// Package engine implements the interaction state machine of the canvas.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All interaction handling runs through Process, one event at a time. Pointer
// events, sidebar selections, resizes and oracle resolutions are all events.
// This gives:
// - Predictable ordering of placements and cues
// - No shared mutable canvas state between goroutines
// - Simple reasoning about which placeholder belongs to which request
//
// Task-Per-Operation:
// A combine or split that misses the cache does not block. Process opens a
// placeholder, returns a Task, and the caller runs Execute on any goroutine.
// Execute calls the oracle and returns an EventResolved, which is fed back
// through Process. Run does this wiring for headless use; the terminal UI
// does it with bubbletea commands.
//
// The cache is always consulted synchronously inside Process before a Task is
// issued. Two first-time requests for the same key issued before either
// resolves both produce Tasks; the oracle layer coalesces identical in-flight
// calls, and the cache write is last-write-wins in any case.
//
// CRITICAL PATTERNS:
//
// Placements are removed before a request is issued, never after, so a
// resolution never needs to find or cancel anything on the canvas.
//
// Every placeholder is ended exactly once, by the resolution of its own
// request, whether that resolution succeeded or failed.
//
// Errors are logged and processing continues. Nothing in the engine is fatal.
package engine
