// Package mfa holds the secret material of second factors: sealing TOTP
// secrets at rest and generating one-time backup codes.
package mfa

// Encryptor seals and opens values bound to a Scope.
type Encryptor interface {
	// Encrypt returns ciphertext for the given plaintext and scope.
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Decrypt returns plaintext for the given ciphertext and scope.
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES-256 keys (32 bytes).
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
