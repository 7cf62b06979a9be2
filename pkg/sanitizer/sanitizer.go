package sanitizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// Canonical is the normalization applied to every value before hashing.
var Canonical = Pipeline{
	strings.TrimSpace,
	strings.ToLower,
}

func Canonicalize(value string) string {
	return Canonical.Apply(value)
}

// Hash returns the lowercase hex SHA-256 digest of the canonical form of value.
// Empty input yields "". Whitespace-only input hashes to the digest of "".
func Hash(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(Canonicalize(value)))
	return hex.EncodeToString(sum[:])
}

// IsDigest reports whether s has the shape of a Hash output.
func IsDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
