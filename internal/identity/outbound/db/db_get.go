package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

const selectUser = `SELECT user_id, email, password, role, tfa_enabled, COALESCE(tfa_secret, ''), created_at, updated_at FROM users`

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, selectUser+` WHERE email = $1`, email)
}

func (s *DB) GetUserByID(ctx context.Context, id string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, selectUser+` WHERE user_id = $1`, id)
}

func (s *DB) getUser(ctx context.Context, query string, arg any) (*entity.User, error) {
	var (
		u    entity.User
		role string
	)

	err := s.conn.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Password, &role, &u.TfaEnabled, &u.TfaSecret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	if u.Role, err = rbac.Parse(role); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}

	return &u, nil
}

func (s *DB) GetUserList(ctx context.Context) (_ []entity.UserSummary, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT user_id, email, role, tfa_enabled, created_at, updated_at FROM users ORDER BY created_at, user_id`)
	if err != nil {
		return nil, s.mapError(err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserSummary, error) {
		var (
			u    entity.UserSummary
			role string
		)
		if err := row.Scan(&u.ID, &u.Email, &role, &u.TfaEnabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return u, err
		}

		r, err := rbac.Parse(role)
		if err != nil {
			return u, fmt.Errorf("user %s: %w", u.ID, err)
		}
		u.Role = r

		return u, nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return list, nil
}

func (s *DB) CountUnusedBackupCodes(ctx context.Context, userID string) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "CountUnusedBackupCodes")
	defer func() { s.endSpan(span, err) }()

	var n int
	err = s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM tfa_backup_codes WHERE user_id = $1 AND is_used = FALSE`, userID).Scan(&n)
	if err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}
