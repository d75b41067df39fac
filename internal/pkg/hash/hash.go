package hash

import "errors"

// ErrTooLong is returned when a plaintext exceeds what the algorithm can hash
// without silently truncating it.
var ErrTooLong = errors.New("hash: plaintext too long")

// Hash is the contract for hashing a secret and verifying it later.
type Hash interface {
	// Hash returns the stored representation of plaintext.
	Hash(plaintext string) ([]byte, error)

	// Verify reports whether plaintext matches hashed.
	Verify(hashed, plaintext string) bool
}
