package event

import "time"

const (
	UserRegisteredDestination string = "auth.user_registered"
	TfaEnabledDestination     string = "auth.tfa_enabled"
	TfaDisabledDestination    string = "auth.tfa_disabled"
	RoleChangedDestination    string = "auth.role_changed"
)

type UserRegisteredMessage struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TfaChangedMessage is published on both 2FA destinations. Method names the
// second factor used to disable, it is empty on enable.
type TfaChangedMessage struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Method     string    `json:"method,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RoleChangedMessage struct {
	UserID     string    `json:"user_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	By         string    `json:"by"`
	OccurredAt time.Time `json:"occurred_at"`
}
