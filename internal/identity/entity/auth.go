package entity

import (
	"time"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

type User struct {
	ID         string
	Email      string
	Password   string // bcrypt digest
	Role       rbac.Role
	TfaEnabled bool
	TfaSecret  string // sealed, empty while 2FA is off
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type NewUser struct {
	ID       string
	Email    string
	Password string // bcrypt digest
	Now      time.Time
}

type BackupCode struct {
	ID     int64
	UserID string
	Code   string // keyed digest, never the plaintext
}

// EnableTFA is the state written when 2FA is switched on.
type EnableTFA struct {
	UserID string
	Secret string // sealed
	Codes  []BackupCode
	Now    time.Time
}

// DisableTFA turns 2FA off. BackupCode is the digest of the backup code
// presented as second factor and is empty when a TOTP code was checked.
type DisableTFA struct {
	UserID     string
	BackupCode string
	Now        time.Time
}

// UserSummary is the public view of an identity.
type UserSummary struct {
	ID         string
	Email      string
	Role       rbac.Role
	TfaEnabled bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type SecuritySummary struct {
	UserID            string
	TfaEnabled        bool
	UnusedBackupCodes int
}

// Summary drops the credential fields.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		TfaEnabled: u.TfaEnabled,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
