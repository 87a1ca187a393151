// Package ir provides the foundational value types for elemental.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Element identity is its Symbol; Glyph is denormalized display data
//   - Cache keys are structured (Key), never ad-hoc concatenated strings
//   - Symbols are NFC normalized before they participate in a Key
//   - The legacy "A+++B" string form exists only at the export boundary
//   - No float types in persisted or hashed data; timestamps are int64 millis
package ir
