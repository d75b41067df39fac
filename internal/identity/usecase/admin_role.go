package usecase

import (
	"context"
	"log/slog"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

type ChangeRoleInput struct {
	ID string `validate:"required,uuid"`
}

func (s *Usecase) GrantAdmin(ctx context.Context, in ChangeRoleInput) error {
	ctx, span := s.startSpan(ctx, "GrantAdmin")
	defer span.End()

	return s.changeRole(ctx, in, rbac.RoleAdmin)
}

func (s *Usecase) RevokeAdmin(ctx context.Context, in ChangeRoleInput) error {
	ctx, span := s.startSpan(ctx, "RevokeAdmin")
	defer span.End()

	return s.changeRole(ctx, in, rbac.RoleUser)
}

func (s *Usecase) changeRole(ctx context.Context, in ChangeRoleInput, to rbac.Role) error {
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	var by string
	if clm := jwt.GetAuth(ctx); clm != nil {
		by = clm.UserID
	}

	user, err := s.findUser(ctx, in.ID)
	if err != nil {
		return err
	}

	switch {
	case to == rbac.RoleAdmin && user.Role == rbac.RoleAdmin:
		return goerror.NewValidation("User is already an Admin")
	case to != rbac.RoleAdmin && user.Role != rbac.RoleAdmin:
		return goerror.NewValidation("User is not an Admin")
	}

	now := s.clock.Now()
	changed, err := s.repoDB.UpdateRole(ctx, user.ID, user.Role, to, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update role", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !changed {
		slog.WarnContext(ctx, "role changed concurrently", "user_id", user.ID, "expected", user.Role.String())
		return goerror.NewBusiness("User role was changed by another request", goerror.CodeConflict)
	}

	slog.InfoContext(ctx, "user role changed", "user_id", user.ID, "from", user.Role.String(), "to", to.String(), "by", by)

	s.publish(ctx, "role_changed", func(ctx context.Context) error {
		return s.repoMessaging.PublishRoleChanged(ctx, RoleChangedEvent{
			UserID:     user.ID,
			From:       user.Role,
			To:         to,
			By:         by,
			OccurredAt: now,
		})
	})

	return nil
}
