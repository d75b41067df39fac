package inbound

import (
	"net/http"
	"time"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookieTTL  = 24 * time.Hour
)

// session carries the token pair handed out on register and login.
type session struct {
	accessToken  string
	refreshToken string
	cookie       CookieConfig
}

func (s session) Headers() http.Header {
	return bearerHeader(s.accessToken)
}

func (s session) Cookies() []*http.Cookie {
	if s.refreshToken == "" {
		return nil
	}

	return []*http.Cookie{{
		Name:     refreshCookieName,
		Value:    s.refreshToken,
		Path:     "/",
		Domain:   s.cookie.Domain,
		MaxAge:   int(refreshCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}}
}

// accessHeader carries a freshly minted access token in the response header.
type accessHeader string

func (a accessHeader) Headers() http.Header {
	return bearerHeader(string(a))
}

func bearerHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisteredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	Message string         `json:"message" example:"User created"`
	User    RegisteredUser `json:"user"`

	session
}

func (RegisterResponse) StatusCode() int { return http.StatusCreated }

func (r RegisterResponse) Envelope() any { return r }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token,omitempty"`
}

type LoggedInUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Tfa   bool   `json:"tfa"`
}

type LoginResponse struct {
	Message string       `json:"message" example:"User logged in successfully"`
	User    LoggedInUser `json:"user"`

	session
}

func (LoginResponse) StatusCode() int { return http.StatusCreated }

func (r LoginResponse) Envelope() any { return r }

type RefreshResponse struct {
	Message string `json:"message" example:"Access token refreshed"`

	accessHeader
}

func (RefreshResponse) StatusCode() int { return http.StatusCreated }

func (r RefreshResponse) Envelope() any { return r }

type EnableTFAData struct {
	QRCodeURL   string   `json:"qrCodeUrl"`
	Secret      string   `json:"secret"`
	BackupCodes []string `json:"backupCodes"`
}

type EnableTFAResponse struct {
	Status string        `json:"status" example:"success"`
	Data   EnableTFAData `json:"data"`

	accessHeader
}

func (r EnableTFAResponse) Envelope() any { return r }

type DisableTFARequest struct {
	Token string `json:"token"`
}

type DisableTFAResponse struct {
	Message string `json:"message" example:"Two-factor authentication disabled"`

	accessHeader
}

func (r DisableTFAResponse) Envelope() any { return r }

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	TfaEnabled bool      `json:"tfa"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func newUserResponse(u entity.UserSummary) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role.String(),
		TfaEnabled: u.TfaEnabled,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

func (r UserListResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Users)}
}

type UserSecurityResponse struct {
	ID                string `json:"id"`
	TfaEnabled        bool   `json:"tfa"`
	UnusedBackupCodes int    `json:"unusedBackupCodes"`
}

type ChangeRoleRequest struct {
	ID string `json:"id"`
}

type ChangeRoleResponse struct {
	msg string
}

func (r ChangeRoleResponse) Envelope() any {
	return map[string]string{"message": r.msg}
}
