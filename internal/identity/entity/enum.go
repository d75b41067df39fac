package entity

import (
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/mfa"
)

// SecondFactor is the kind of code supplied as a second factor.
type SecondFactor int8

const (
	// SecondFactorUnknown is a code of unsupported length.
	SecondFactorUnknown SecondFactor = 0

	// SecondFactorTOTP is a 6 digit authenticator code.
	SecondFactorTOTP SecondFactor = 1

	// SecondFactorBackupCode is an 8 digit one-time recovery code.
	SecondFactorBackupCode SecondFactor = 2
)

const totpCodeLength = 6

// SecondFactorOf routes a code by its length only.
func SecondFactorOf(code string) SecondFactor {
	switch len(code) {
	case totpCodeLength:
		return SecondFactorTOTP
	case mfa.BackupCodeLength:
		return SecondFactorBackupCode
	default:
		return SecondFactorUnknown
	}
}

func (f SecondFactor) String() string {
	switch f {
	case SecondFactorTOTP:
		return "totp"
	case SecondFactorBackupCode:
		return "backup_code"
	default:
		return "unknown"
	}
}
