package mfa

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	// BackupCodeCount is the number of codes issued per enrollment.
	BackupCodeCount = 8
	// BackupCodeLength is the number of digits in a backup code.
	BackupCodeLength = 8

	backupCodeMin = 10_000_000
	backupCodeMax = 99_999_999
)

// BackupCodeGenerator produces a batch of one-time recovery codes.
type BackupCodeGenerator interface {
	Generate() ([]string, error)
}

// BackupCodes draws 8-digit codes uniformly from [10000000, 99999999] using
// crypto/rand. Codes within one batch are unique.
type BackupCodes struct {
	count int
}

// NewBackupCodes returns a generator of BackupCodeCount codes per batch.
func NewBackupCodes() *BackupCodes {
	return &BackupCodes{count: BackupCodeCount}
}

// Generate returns a fresh batch.
func (b *BackupCodes) Generate() ([]string, error) {
	span := big.NewInt(backupCodeMax - backupCodeMin + 1)

	out := make([]string, 0, b.count)
	seen := make(map[string]struct{}, b.count)

	for len(out) < b.count {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return nil, err
		}

		code := strconv.FormatInt(n.Int64()+backupCodeMin, 10)
		if _, dup := seen[code]; dup {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}
