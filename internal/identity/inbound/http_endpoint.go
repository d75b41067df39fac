package inbound

import (
	"github.com/samber/lo"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/identity/usecase"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for authentication, two-factor and
// user administration workflows.
type HTTPEndpoint struct {
	uc     uc
	cookie CookieConfig
}

// Register creates an identity and signs it in.
// @Summary Register user
// @Description Creates a user with the default role and returns an access token in the Authorization header and a refresh token cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Register payload"
// @Success 201 {object} RegisterResponse "User created"
// @Failure 400 {object} router.errorResponse "Missing fields or weak password"
// @Failure 409 {object} router.errorResponse "Email already exists"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		Message: "User created",
		User:    RegisteredUser{ID: resp.User.ID, Email: resp.User.Email},
		session: session{accessToken: resp.AccessToken, refreshToken: resp.RefreshToken, cookie: h.cookie},
	}, nil
}

// Login authenticates a user, checking the second factor when enabled.
// @Summary Authenticate user
// @Description Validates credentials and the optional 2FA token (6-digit TOTP or 8-digit backup code).
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 201 {object} LoginResponse "User logged in successfully"
// @Failure 400 {object} router.errorResponse "Email and password are required"
// @Failure 401 {object} router.errorResponse "Invalid password or 2FA token"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Token:    req.Token,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Message: "User logged in successfully",
		User: LoggedInUser{
			ID:    resp.User.ID,
			Email: resp.User.Email,
			Role:  resp.User.Role.String(),
			Tfa:   resp.User.TfaEnabled,
		},
		session: session{accessToken: resp.AccessToken, refreshToken: resp.RefreshToken, cookie: h.cookie},
	}, nil
}

// Refresh mints a new access token from the refresh token cookie.
// @Summary Refresh access token
// @Tags Authentication
// @Produce json
// @Success 201 {object} RefreshResponse "Access token refreshed"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /auth/refresh [post]
func (h *HTTPEndpoint) Refresh(r *router.Request) (any, error) {
	resp, err := h.uc.Refresh(r.Context(), usecase.RefreshInput{
		RefreshToken: r.GetCookie(refreshCookieName),
	})
	if err != nil {
		return nil, err
	}

	return RefreshResponse{
		Message:      "Access token refreshed",
		accessHeader: accessHeader(resp.AccessToken),
	}, nil
}

// EnableTFA enrolls the caller in two-factor authentication.
// @Summary Enable 2FA
// @Description Returns the TOTP secret, a QR code data URL and eight one-time backup codes. They are shown once.
// @Tags Two-Factor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EnableTFAResponse
// @Failure 400 {object} router.errorResponse "Two-factor authentication is already enabled"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 409 {object} router.errorResponse "Enrollment already in progress"
// @Router /auth/enable-tfa [get]
func (h *HTTPEndpoint) EnableTFA(r *router.Request) (any, error) {
	resp, err := h.uc.EnableTFA(r.Context())
	if err != nil {
		return nil, err
	}

	return EnableTFAResponse{
		Status: "success",
		Data: EnableTFAData{
			QRCodeURL:   resp.QRCodeURL,
			Secret:      resp.Secret,
			BackupCodes: resp.BackupCodes,
		},
		accessHeader: accessHeader(resp.AccessToken),
	}, nil
}

// DisableTFA turns two-factor authentication off.
// @Summary Disable 2FA
// @Description Requires a current TOTP code or an unused backup code, sent as JSON body or token query parameter.
// @Tags Two-Factor
// @Produce json
// @Security BearerAuth
// @Param token query string false "TOTP code or backup code"
// @Success 200 {object} DisableTFAResponse
// @Failure 400 {object} router.errorResponse "Token missing, malformed or 2FA not enabled"
// @Failure 401 {object} router.errorResponse "Invalid two-factor authentication token"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /auth/disable-tfa [get]
func (h *HTTPEndpoint) DisableTFA(r *router.Request) (any, error) {
	var req DisableTFARequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}
	if req.Token == "" {
		req.Token = r.GetQuery("token")
	}

	resp, err := h.uc.DisableTFA(r.Context(), usecase.DisableTFAInput{Token: req.Token})
	if err != nil {
		return nil, err
	}

	return DisableTFAResponse{
		Message:      "Two-factor authentication disabled",
		accessHeader: accessHeader(resp.AccessToken),
	}, nil
}

// UserList returns every identity.
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=UserListResponse}
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	users, err := h.uc.UserList(r.Context())
	if err != nil {
		return nil, err
	}

	return UserListResponse{
		Users: lo.Map(users, func(u entity.UserSummary, _ int) UserResponse {
			return newUserResponse(u)
		}),
	}, nil
}

// UserDetail returns one identity, visible to itself and to admins.
// @Summary User detail
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=UserResponse}
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /users/{id} [get]
func (h *HTTPEndpoint) UserDetail(r *router.Request) (any, error) {
	user, err := h.uc.UserDetail(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return newUserResponse(*user), nil
}

// UserSecurity reports the caller's two-factor state.
// @Summary User security settings
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=UserSecurityResponse}
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /users/{id}/security [get]
func (h *HTTPEndpoint) UserSecurity(r *router.Request) (any, error) {
	sec, err := h.uc.UserSecurity(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return UserSecurityResponse{
		ID:                sec.UserID,
		TfaEnabled:        sec.TfaEnabled,
		UnusedBackupCodes: sec.UnusedBackupCodes,
	}, nil
}

// GrantAdmin promotes a user to Admin.
// @Summary Grant admin
// @Tags Administration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangeRoleRequest true "Target user"
// @Success 200 {object} ChangeRoleResponse "Admin granted"
// @Failure 400 {object} router.errorResponse "User is already an Admin"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /admin/grantAdmin [post]
func (h *HTTPEndpoint) GrantAdmin(r *router.Request) (any, error) {
	var req ChangeRoleRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.GrantAdmin(r.Context(), usecase.ChangeRoleInput{ID: req.ID}); err != nil {
		return nil, err
	}

	return ChangeRoleResponse{msg: "Admin granted"}, nil
}

// RevokeAdmin demotes an Admin to User.
// @Summary Revoke admin
// @Tags Administration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangeRoleRequest true "Target user"
// @Success 200 {object} ChangeRoleResponse "Admin revoked"
// @Failure 400 {object} router.errorResponse "User is not an Admin"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /admin/revokeAdmin [post]
func (h *HTTPEndpoint) RevokeAdmin(r *router.Request) (any, error) {
	var req ChangeRoleRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RevokeAdmin(r.Context(), usecase.ChangeRoleInput{ID: req.ID}); err != nil {
		return nil, err
	}

	return ChangeRoleResponse{msg: "Admin revoked"}, nil
}
