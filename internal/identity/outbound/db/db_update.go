package db

import (
	"context"
	"time"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

const consumeBackupCodeQuery = `UPDATE tfa_backup_codes SET is_used = TRUE, used_at = $3 WHERE user_id = $1 AND code = $2 AND is_used = FALSE`

// ConsumeBackupCode marks an unused code as used. It reports whether this
// call was the one that consumed it.
func (s *DB) ConsumeBackupCode(ctx context.Context, userID, digest string, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeBackupCode")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, consumeBackupCodeQuery, userID, digest, at)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// UpdateRole changes the role only while it still equals from.
func (s *DB) UpdateRole(ctx context.Context, userID string, from, to rbac.Role, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "UpdateRole")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE users SET role = $3, updated_at = $4 WHERE user_id = $1 AND role = $2`,
		userID, from.String(), to.String(), at,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
