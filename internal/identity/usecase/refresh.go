package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshOutput struct {
	AccessToken string
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is not rotated and stays valid until it expires.
func (s *Usecase) Refresh(ctx context.Context, in RefreshInput) (*RefreshOutput, error) {
	ctx, span := s.startSpan(ctx, "Refresh")
	defer span.End()

	unauthorized := goerror.NewBusiness("Unauthorized", goerror.CodeUnauthorized)

	if in.RefreshToken == "" {
		return nil, unauthorized
	}

	clm, err := s.tokens.VerifyRefresh(in.RefreshToken)
	if err != nil {
		slog.WarnContext(ctx, "refresh token rejected", "error", err)
		return nil, unauthorized
	}

	user, err := s.repoDB.GetUserByEmail(ctx, clm.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token for unknown user", "user_id", clm.UserID)
		return nil, unauthorized
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	access, err := s.issueAccess(ctx, subjectOf(user))
	if err != nil {
		return nil, err
	}

	return &RefreshOutput{AccessToken: access}, nil
}
