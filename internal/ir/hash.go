package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainCombine = "elemental/combine/v1"
	DomainSplit   = "elemental/split/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// KeyID computes the content-addressed ID of a cache key.
// The symbols are hashed as a canonical JSON array, so no delimiter can
// collide with symbol content.
func KeyID(k Key) (string, error) {
	var domain string
	switch k.Kind {
	case KindCombine:
		domain = DomainCombine
	case KindSplit:
		domain = DomainSplit
	default:
		return "", fmt.Errorf("KeyID: invalid key kind %v", k.Kind)
	}

	canonical, err := MarshalCanonical(k.Symbols())
	if err != nil {
		return "", fmt.Errorf("KeyID: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustKeyID is like KeyID but panics on error.
// Use only in tests or when the key was built by CombineKey or SplitKey.
func MustKeyID(k Key) string {
	id, err := KeyID(k)
	if err != nil {
		panic(err)
	}
	return id
}
