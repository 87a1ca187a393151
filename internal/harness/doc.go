// Package harness runs scripted play sessions against the real engine.
//
// A scenario seeds the known elements, scripts the oracle with a recipe
// table, replays sidebar selections and pointer events, and resolves oracle
// tasks at explicit points so that interleavings are deterministic. After the
// last step its assertions are evaluated against the final state and the
// recorded cues.
//
// # Scenario Format
//
//	name: earth_water_mud
//	description: "First combination is a discovery"
//	seed:
//	  - {symbol: Earth, glyph: e}
//	  - {symbol: Water, glyph: w}
//	recipes:
//	  combine:
//	    - {a: Earth, b: Water, result: {symbol: Mud, glyph: m}}
//	steps:
//	  - select: Earth
//	  - release: {x: 100, y: 100}
//	  - select: Water
//	  - release: {x: 105, y: 100}
//	  - resolve: all
//	assertions:
//	  - type: canvas
//	    symbols: [Mud]
//	  - type: cues
//	    cues: [plop, plop, discovery]
//
// # Step Kinds
//
//   - select: attach a known element to the pointer
//   - press, release, move, double_click: pointer events, {button, x, y}
//   - cancel: return the held element to the pool
//   - resize: set the surface size, {width, height}
//   - resolve: run outstanding oracle tasks, "all" in issue order or
//     "reverse" for the opposite order
//
// # Assertion Types
//
//   - canvas: the placement symbols, in order
//   - placement: a placement of symbol at x, y exists
//   - known: symbol is known, optionally with the given discovery flag
//   - combo: the cache entry for a + b holds symbol, or a tombstone
//   - split: the cache entry for symbol splits into symbols, or a tombstone
//   - cues: every cue played, in order
//   - oracle_calls: the number of oracle calls
//   - pending: the number of open placeholders
//   - state: the interaction state
package harness
