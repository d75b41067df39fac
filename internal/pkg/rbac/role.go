package rbac

import (
	"errors"
	"strings"
)

// ErrUnknownRole is returned when a role name cannot be parsed.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Role is an ordered privilege level. A higher value grants everything a
// lower value grants.
type Role int8

const (
	// RoleGuest is the lowest level, granted to nobody by default.
	RoleGuest Role = 0

	// RoleUser is the level of every registered account.
	RoleUser Role = 1

	// RoleAdmin can manage other accounts.
	RoleAdmin Role = 2
)

// String returns the stored name of the role.
func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "Guest"
	case RoleUser:
		return "User"
	case RoleAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

// Rank returns the ordering value of the role.
func (r Role) Rank() int {
	return int(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// AtLeast reports whether r grants at least the privileges of min.
// Unknown roles never satisfy a check.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// Parse converts a stored role name. Matching is case-insensitive.
func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guest":
		return RoleGuest, nil
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleGuest, ErrUnknownRole
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	role, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
