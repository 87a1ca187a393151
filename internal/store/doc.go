// Package store provides SQLite-backed durable storage for elemental.
//
// The store keeps three independently keyed records:
//   - Elements: the known-elements list, in first-seen order
//   - Combos: combination cache, canonical pair -> element (or tombstone)
//   - Splits: split cache, symbol -> pair (or tombstone pair)
//
// # Critical Patterns
//
// Structured keys: combination rows are keyed by the ordered columns (a, b)
// and by the content-addressed key_id from internal/ir/hash.go. No delimiter
// is ever concatenated into a stored key.
//
// Last-write-wins: Put* methods upsert. Merge* methods insert only when the
// key is absent, so resident state wins over imported state.
//
// No cross-record transactions: each record is written independently, so a
// crash between writes can leave the records mutually inconsistent.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
