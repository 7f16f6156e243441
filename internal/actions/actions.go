// Package actions holds the stateless helper functions shared by adapters:
// encoding, hashing, and name sanitization. Nothing here carries state or
// knows about the registry.
package actions

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// HashKey returns the hex-encoded sha256 digest of s, suitable as a stable
// cache or file key.
func HashKey(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Fingerprint condenses any number of fields into a short stable digest,
// used to spot metadata drift between builds.
func Fingerprint(fields ...string) string {
	return HashKey(strings.Join(fields, "\x00"))[:12]
}

// Encode encodes raw bytes as unpadded URL-safe base64.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode reverses Encode.
func Decode(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return b, nil
}

// Sanitize lowercases s and replaces every run of characters outside
// [a-z0-9._-] with a single underscore, trimming leading and trailing
// separators. Used to derive table and file names from adapter identities.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSep := true // swallow leading separators
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
