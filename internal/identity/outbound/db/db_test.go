package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

const userID = "0190b9a4-0000-7000-8000-000000000001"

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewDB(mock, instrument.NewNoop()), mock
}

func userColumns() []string {
	return []string{"user_id", "email", "password", "role", "tfa_enabled", "tfa_secret", "created_at", "updated_at"}
}

func TestDB_GetUserByEmail(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("SELECT user_id, email, password, role").
		WithArgs("driver@nor.example").
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(userID, "driver@nor.example", "$2a$08$hash", "Admin", true, "sealed", now, now))

	u, err := s.GetUserByEmail(context.Background(), "driver@nor.example")
	require.NoError(t, err)
	assert.Equal(t, &entity.User{
		ID:         userID,
		Email:      "driver@nor.example",
		Password:   "$2a$08$hash",
		Role:       rbac.RoleAdmin,
		TfaEnabled: true,
		TfaSecret:  "sealed",
		CreatedAt:  now,
		UpdatedAt:  now,
	}, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_GetUserByID_NotFound(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("SELECT user_id, email, password, role").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetUserByID(context.Background(), userID)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_GetUserByID_UnknownRole(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("SELECT user_id, email, password, role").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(userID, "driver@nor.example", "$2a$08$hash", "Marshal", false, "", now, now))

	_, err := s.GetUserByID(context.Background(), userID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_GetUserList(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("SELECT user_id, email, role, tfa_enabled").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "email", "role", "tfa_enabled", "created_at", "updated_at"}).
			AddRow(userID, "a@nor.example", "Admin", false, now, now).
			AddRow("0190b9a4-0000-7000-8000-000000000002", "b@nor.example", "User", true, now, now))

	list, err := s.GetUserList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, rbac.RoleAdmin, list[0].Role)
	assert.Equal(t, "b@nor.example", list[1].Email)
	assert.True(t, list[1].TfaEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_CountUnusedBackupCodes(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	n, err := s.CountUnusedBackupCodes(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_CreateUser(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(userID, "driver@nor.example", "$2a$08$hash", now).
		WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow("User"))

	role, err := s.CreateUser(context.Background(), entity.NewUser{
		ID: userID, Email: "driver@nor.example", Password: "$2a$08$hash", Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleUser, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_CreateUser_DuplicateEmail(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(userID, "driver@nor.example", "$2a$08$hash", now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreateUser(context.Background(), entity.NewUser{
		ID: userID, Email: "driver@nor.example", Password: "$2a$08$hash", Now: now,
	})
	assert.ErrorIs(t, err, goerror.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ConsumeBackupCode(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectExec("UPDATE tfa_backup_codes SET is_used = TRUE").
		WithArgs(userID, "digest", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE tfa_backup_codes SET is_used = TRUE").
		WithArgs(userID, "digest", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := s.ConsumeBackupCode(context.Background(), userID, "digest", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ConsumeBackupCode(context.Background(), userID, "digest", now)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_UpdateRole(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectExec("UPDATE users SET role").
		WithArgs(userID, "User", "Admin", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := s.UpdateRole(context.Background(), userID, rbac.RoleUser, rbac.RoleAdmin, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_EnableTwoFactor(t *testing.T) {
	s, mock := setupDB(t)

	in := entity.EnableTFA{
		UserID: userID,
		Secret: "sealed",
		Now:    now,
		Codes: []entity.BackupCode{
			{ID: 1, UserID: userID, Code: "d1"},
			{ID: 2, UserID: userID, Code: "d2"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET tfa_enabled = TRUE").
		WithArgs(userID, "sealed", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM tfa_backup_codes").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 8))
	mock.ExpectCopyFrom(pgx.Identifier{"tfa_backup_codes"}, backupCodeColumns).
		WillReturnResult(2)
	mock.ExpectCommit()

	require.NoError(t, s.EnableTwoFactor(context.Background(), in))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_EnableTwoFactor_AlreadyEnabled(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET tfa_enabled = TRUE").
		WithArgs(userID, "sealed", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := s.EnableTwoFactor(context.Background(), entity.EnableTFA{UserID: userID, Secret: "sealed", Now: now})
	assert.ErrorIs(t, err, goerror.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DisableTwoFactor(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET tfa_enabled = FALSE").
		WithArgs(userID, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM tfa_backup_codes").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))
	mock.ExpectCommit()

	require.NoError(t, s.DisableTwoFactor(context.Background(), entity.DisableTFA{UserID: userID, Now: now}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DisableTwoFactor_DeleteFails(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET tfa_enabled = FALSE").
		WithArgs(userID, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM tfa_backup_codes").
		WithArgs(userID).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.DisableTwoFactor(context.Background(), entity.DisableTFA{UserID: userID, Now: now})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DisableTwoFactor_WithBackupCode(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tfa_backup_codes SET is_used = TRUE").
		WithArgs(userID, "digest", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET tfa_enabled = FALSE").
		WithArgs(userID, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM tfa_backup_codes").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 8))
	mock.ExpectCommit()

	err := s.DisableTwoFactor(context.Background(), entity.DisableTFA{UserID: userID, BackupCode: "digest", Now: now})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DisableTwoFactor_BackupCodeUsed(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tfa_backup_codes SET is_used = TRUE").
		WithArgs(userID, "digest", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := s.DisableTwoFactor(context.Background(), entity.DisableTFA{UserID: userID, BackupCode: "digest", Now: now})
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DisableTwoFactor_ConflictRollsBackCode(t *testing.T) {
	s, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tfa_backup_codes SET is_used = TRUE").
		WithArgs(userID, "digest", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET tfa_enabled = FALSE").
		WithArgs(userID, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := s.DisableTwoFactor(context.Background(), entity.DisableTFA{UserID: userID, BackupCode: "digest", Now: now})
	assert.ErrorIs(t, err, goerror.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
