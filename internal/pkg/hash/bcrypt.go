package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptMaxBytes is the longest input bcrypt considers.
const BcryptMaxBytes = 72

// Bcrypt implements Hash using bcrypt.
//
// Hashes are stored in the modular crypt format ($2a$/$2b$), so records
// written by other bcrypt implementations verify unchanged.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt-based hasher. A cost outside
// [bcrypt.MinCost, bcrypt.MaxCost] falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Cost returns the work factor used for new hashes.
func (h *Bcrypt) Cost() int {
	return h.cost
}

// Hash hashes plaintext using bcrypt with a fresh salt.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	if len(plaintext) > BcryptMaxBytes {
		return nil, ErrTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
}

// Verify returns true when plaintext matches the hashed value.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	if hashed == "" || len(plaintext) > BcryptMaxBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
