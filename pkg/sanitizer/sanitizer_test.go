package sanitizer

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  John  ", want: "john"},
		{name: "tabs and newlines", input: "\tFoo@Bar.com\n", want: "foo@bar.com"},
		{name: "inner spaces kept", input: " New York ", want: "new york"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "unicode lowercased", input: "ÉCOLE", want: "école"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.input)
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "plain email", input: "a@b.com", want: sha("a@b.com")},
		{name: "mixed case email", input: "A@B.com", want: sha("a@b.com")},
		{name: "padded mixed case", input: " Foo@Bar.com ", want: sha("foo@bar.com")},
		{
			name:  "known vector",
			input: "test@example.com",
			want:  "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.input)
			if got != tt.want {
				t.Errorf("Hash(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHash_CaseAndWhitespaceInsensitive(t *testing.T) {
	if Hash(" Foo@Bar.com ") != Hash("foo@bar.com") {
		t.Error("expected padded mixed-case input to hash like its canonical form")
	}
}

func TestHash_Deterministic(t *testing.T) {
	first := Hash("John")
	for i := 0; i < 100; i++ {
		if got := Hash("John"); got != first {
			t.Fatalf("iteration %d: hash changed from %q to %q", i, first, got)
		}
	}
	if !IsDigest(first) {
		t.Errorf("expected 64 lowercase hex chars, got %q", first)
	}
}

func TestHash_Idempotent(t *testing.T) {
	// hashing a digest hashes the digest string itself; it never returns the input unchanged
	d := Hash("value")
	if Hash(d) == d {
		t.Error("digest of a digest should differ from the digest")
	}
}

func TestIsDigest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "real digest", input: sha("x"), want: true},
		{name: "uppercase hex", input: "973DFE463EC85785F5F95AF5BA3906EEDB2D931C24E69824A89EA65DBA4E813B", want: false},
		{name: "too short", input: "abc", want: false},
		{name: "empty", input: "", want: false},
		{name: "raw email", input: "someone@example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDigest(tt.input); got != tt.want {
				t.Errorf("IsDigest(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
