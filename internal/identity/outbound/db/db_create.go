package db

import (
	"context"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

// CreateUser inserts the identity and returns the role assigned by the
// column default.
func (s *DB) CreateUser(ctx context.Context, user entity.NewUser) (_ rbac.Role, err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	var role string
	err = s.conn.QueryRow(ctx,
		`INSERT INTO users (user_id, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING role`,
		user.ID, user.Email, user.Password, user.Now,
	).Scan(&role)
	if err != nil {
		return rbac.RoleGuest, s.mapError(err)
	}

	return rbac.Parse(role)
}
