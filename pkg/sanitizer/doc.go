// Package sanitizer provides the canonicalization and hashing primitives applied to
// identity attributes before they leave the service.
//
// All functions are pure and idempotent on their canonical output. Invalid or absent
// input is handled by returning an empty string, never an error.
//
// Canonicalization includes:
//   - Strings: trim surrounding whitespace, lowercase
//   - Hashes: SHA-256 of the canonical UTF-8 bytes, lowercase hex
//   - Phone numbers: optional E.164 parsing, emitted as digits only (country code included)
package sanitizer
