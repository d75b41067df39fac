package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string
	Password string
	Token    string
}

type LoginOutput struct {
	User         entity.UserSummary
	AccessToken  string
	RefreshToken string
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Token = strings.TrimSpace(in.Token)
	if in.Email == "" || in.Password == "" {
		return nil, goerror.NewValidation("Email and password are required")
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", in.Email)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.TfaEnabled && in.Token == "" {
		return nil, goerror.NewBusiness("Two-factor authentication required", goerror.CodeUnauthorized)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("Invalid password", goerror.CodeUnauthorized)
	}

	if user.TfaEnabled {
		if _, err := s.verifySecondFactor(ctx, user, in.Token); err != nil {
			return nil, err
		}
	}

	access, refresh, err := s.issuePair(ctx, subjectOf(user))
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user.Summary(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
