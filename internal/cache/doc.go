// Package cache memoizes combination and split outcomes.
//
// Entries are keyed by the structured ir.Key, never by a concatenated string.
// A stored tombstone is returned on every later lookup until the key is
// overwritten or forgotten, so a pair the oracle could not resolve is never
// queried again automatically.
//
// Every store is mirrored to a Persister (write-through). The in-memory map is
// updated first; a persistence failure is returned to the caller but does not
// roll back the in-memory entry.
package cache
