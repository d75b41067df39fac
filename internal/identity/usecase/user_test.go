package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

func TestUsecase_UserViews(t *testing.T) {
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "a@nor.example")
		f.register(t, "b@nor.example")

		users, err := f.uc.UserList(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("ListStorageError", func(t *testing.T) {
		f := newFixture(t)
		f.repo.err = errors.New("db down")

		_, err := f.uc.UserList(ctx)
		requireCode(t, err, goerror.CodeInternal, "")
	})

	t.Run("Detail", func(t *testing.T) {
		f := newFixture(t)
		reg := f.register(t, "a@nor.example")

		got, err := f.uc.UserDetail(ctx, reg.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@nor.example", got.Email)
	})

	t.Run("DetailNotFound", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.UserDetail(ctx, "not-a-uuid")
		requireCode(t, err, goerror.CodeNotFound, "User not found")

		_, err = f.uc.UserDetail(ctx, "0190f7a2-3c4b-7d8e-9f01-23456789abcd")
		requireCode(t, err, goerror.CodeNotFound, "User not found")
	})

	t.Run("Security", func(t *testing.T) {
		f := newFixture(t)
		user, tfa := f.enroll(t, "a@nor.example")

		_, err := f.uc.Login(ctx, LoginInput{Email: user.Email, Password: strongPassword, Token: tfa.BackupCodes[0]})
		require.NoError(t, err)

		got, err := f.uc.UserSecurity(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.TfaEnabled)
		assert.Equal(t, len(tfa.BackupCodes)-1, got.UnusedBackupCodes)
	})
}

func TestUsecase_ChangeRole(t *testing.T) {
	t.Run("GrantAndRevoke", func(t *testing.T) {
		f := newFixture(t)
		admin := f.register(t, "admin@nor.example")
		target := f.register(t, "racer@nor.example")
		ctx := authCtx(admin.User)

		require.NoError(t, f.uc.GrantAdmin(ctx, ChangeRoleInput{ID: target.User.ID}))

		got, err := f.uc.UserDetail(ctx, target.User.ID)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleAdmin, got.Role)

		err = f.uc.GrantAdmin(ctx, ChangeRoleInput{ID: target.User.ID})
		requireCode(t, err, goerror.CodeInvalidInput, "User is already an Admin")

		require.NoError(t, f.uc.RevokeAdmin(ctx, ChangeRoleInput{ID: target.User.ID}))

		err = f.uc.RevokeAdmin(ctx, ChangeRoleInput{ID: target.User.ID})
		requireCode(t, err, goerror.CodeInvalidInput, "User is not an Admin")

		f.flush(t)
		require.Len(t, f.events.roles, 2)
		granted, ok := f.events.roleEvent(rbac.RoleAdmin)
		require.True(t, ok)
		assert.Equal(t, admin.User.ID, granted.By)
		assert.Equal(t, rbac.RoleUser, granted.From)
		_, ok = f.events.roleEvent(rbac.RoleUser)
		assert.True(t, ok)
	})

	t.Run("ErrorInvalidID", func(t *testing.T) {
		f := newFixture(t)
		err := f.uc.GrantAdmin(context.Background(), ChangeRoleInput{ID: ""})
		requireCode(t, err, goerror.CodeInvalidInput, "")
	})

	t.Run("ErrorConcurrentChange", func(t *testing.T) {
		f := newFixture(t)
		target := f.register(t, "racer@nor.example")
		f.repo.staleRoleOn = true

		err := f.uc.GrantAdmin(context.Background(), ChangeRoleInput{ID: target.User.ID})
		requireCode(t, err, goerror.CodeConflict, "")
	})
}
