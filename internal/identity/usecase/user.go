package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/uid"
)

func (s *Usecase) UserList(ctx context.Context) ([]entity.UserSummary, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	users, err := s.repoDB.GetUserList(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user list", "error", err)
		return nil, goerror.NewServer(err)
	}

	return users, nil
}

func (s *Usecase) UserDetail(ctx context.Context, id string) (*entity.UserSummary, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	sum := user.Summary()
	return &sum, nil
}

func (s *Usecase) UserSecurity(ctx context.Context, id string) (*entity.SecuritySummary, error) {
	ctx, span := s.startSpan(ctx, "UserSecurity")
	defer span.End()

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &entity.SecuritySummary{UserID: user.ID, TfaEnabled: user.TfaEnabled}
	if !user.TfaEnabled {
		return out, nil
	}

	out.UnusedBackupCodes, err = s.repoDB.CountUnusedBackupCodes(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count backup codes", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

// findUser loads a user by id. Ids that are not UUIDs never reach storage.
func (s *Usecase) findUser(ctx context.Context, id string) (*entity.User, error) {
	notFound := goerror.NewBusiness("User not found", goerror.CodeNotFound)

	if !uid.Valid(id) {
		return nil, notFound
	}

	user, err := s.repoDB.GetUserByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", id)
		return nil, notFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
