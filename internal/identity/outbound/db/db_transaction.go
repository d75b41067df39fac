package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
)

var backupCodeColumns = []string{"id", "user_id", "code", "created_at"}

// EnableTwoFactor stores the sealed secret and replaces the backup codes in
// one transaction. It fails with goerror.ErrConflict when 2FA is already on.
func (s *DB) EnableTwoFactor(ctx context.Context, in entity.EnableTFA) (err error) {
	ctx, span := s.startSpan(ctx, "EnableTwoFactor")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET tfa_enabled = TRUE, tfa_secret = $2, updated_at = $3 WHERE user_id = $1 AND tfa_enabled = FALSE`,
			in.UserID, in.Secret, in.Now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tfa_backup_codes WHERE user_id = $1`, in.UserID); err != nil {
			return err
		}

		rows := make([][]any, 0, len(in.Codes))
		for _, c := range in.Codes {
			rows = append(rows, []any{c.ID, c.UserID, c.Code, in.Now})
		}

		_, err = tx.CopyFrom(ctx, pgx.Identifier{"tfa_backup_codes"}, backupCodeColumns, pgx.CopyFromRows(rows))
		return err
	})
}

// DisableTwoFactor clears the secret and deletes every backup code. When
// in.BackupCode is set the code is consumed in the same transaction, so a
// failed disable leaves it unused. It fails with goerror.ErrNotFound when the
// backup code is unknown or used and with goerror.ErrConflict when 2FA is
// already off.
func (s *DB) DisableTwoFactor(ctx context.Context, in entity.DisableTFA) (err error) {
	ctx, span := s.startSpan(ctx, "DisableTwoFactor")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if in.BackupCode != "" {
			tag, err := tx.Exec(ctx, consumeBackupCodeQuery, in.UserID, in.BackupCode, in.Now)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return goerror.ErrNotFound
			}
		}

		tag, err := tx.Exec(ctx,
			`UPDATE users SET tfa_enabled = FALSE, tfa_secret = NULL, updated_at = $2 WHERE user_id = $1 AND tfa_enabled = TRUE`,
			in.UserID, in.Now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}

		_, err = tx.Exec(ctx, `DELETE FROM tfa_backup_codes WHERE user_id = $1`, in.UserID)
		return err
	})
}

func (s *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return s.mapError(err)
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return s.mapError(err)
	}

	return s.mapError(tx.Commit(ctx))
}
