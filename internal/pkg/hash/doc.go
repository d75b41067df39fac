// Package hash provides helpers for hashing and verifying secrets.
//
// Bcrypt is used for account passwords. HMACSHA256 produces deterministic
// digests for values that must be looked up by their hash.
package hash
