package inbound

import (
	"context"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/identity/usecase"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Refresh(ctx context.Context, in usecase.RefreshInput) (*usecase.RefreshOutput, error)

	EnableTFA(ctx context.Context) (*usecase.EnableTFAOutput, error)
	DisableTFA(ctx context.Context, in usecase.DisableTFAInput) (*usecase.DisableTFAOutput, error)

	UserList(ctx context.Context) ([]entity.UserSummary, error)
	UserDetail(ctx context.Context, id string) (*entity.UserSummary, error)
	UserSecurity(ctx context.Context, id string) (*entity.SecuritySummary, error)

	GrantAdmin(ctx context.Context, in usecase.ChangeRoleInput) error
	RevokeAdmin(ctx context.Context, in usecase.ChangeRoleInput) error
}

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	Secure bool
	Domain string
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cookie CookieConfig) {
	end := &HTTPEndpoint{uc: uc, cookie: cookie}

	// Authentication
	r.POST("/auth/register", end.Register)
	r.POST("/auth/login", end.Login)
	r.POST("/auth/refresh", end.Refresh)

	// Two-factor authentication (need authenticated)
	r.GET("/auth/enable-tfa", end.EnableTFA)
	r.GET("/auth/disable-tfa", end.DisableTFA)

	// User directory
	r.GET("/users", end.UserList, router.RequireRole(rbac.RoleAdmin))
	r.GET("/users/:id", end.UserDetail, router.RequireSelfOrAdmin("id"))
	r.GET("/users/:id/security", end.UserSecurity, router.RequireSelf("id"))

	// Administration
	r.POST("/admin/grantAdmin", end.GrantAdmin, router.RequireRole(rbac.RoleAdmin))
	r.POST("/admin/revokeAdmin", end.RevokeAdmin, router.RequireRole(rbac.RoleAdmin))
}
