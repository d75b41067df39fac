package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
)

type DisableTFAInput struct {
	Token string
}

type DisableTFAOutput struct {
	AccessToken string
}

// DisableTFA turns two-factor authentication off after checking a TOTP code
// or consuming a backup code. A backup code is consumed in the same
// transaction that disables 2FA and removes the remaining codes.
func (s *Usecase) DisableTFA(ctx context.Context, in DisableTFAInput) (*DisableTFAOutput, error) {
	ctx, span := s.startSpan(ctx, "DisableTFA")
	defer span.End()

	notEnabled := goerror.NewValidation("Two-factor authentication is not enabled")

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Unauthorized", goerror.CodeUnauthorized)
	}

	in.Token = strings.TrimSpace(in.Token)
	if in.Token == "" {
		return nil, goerror.NewValidation("Two-factor authentication token is required for this operation")
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.TfaEnabled {
		return nil, notEnabled
	}

	now := s.clock.Now()
	disable := entity.DisableTFA{UserID: user.ID, Now: now}

	factor := entity.SecondFactorOf(in.Token)
	switch factor {
	case entity.SecondFactorTOTP:
		if !s.verifyTOTP(ctx, user, in.Token) {
			slog.WarnContext(ctx, "invalid totp code", "user_id", user.ID)
			return nil, goerror.NewBusiness(msgInvalidTfaToken, goerror.CodeUnauthorized)
		}

	case entity.SecondFactorBackupCode:
		disable.BackupCode, err = s.backupCodeDigest(ctx, user.ID, in.Token)
		if err != nil {
			return nil, err
		}

	default:
		return nil, goerror.NewValidation(msgInvalidTfaToken)
	}

	err = s.repoDB.DisableTwoFactor(ctx, disable)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "backup code not match or already used", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgInvalidBackupCode, goerror.CodeUnauthorized)
	}
	if errors.Is(err, goerror.ErrConflict) {
		return nil, notEnabled
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo disable two factor", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	access, err := s.issueAccess(ctx, subjectOf(user))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "tfa_disabled", func(ctx context.Context) error {
		return s.repoMessaging.PublishTfaChanged(ctx, TfaChangedEvent{
			UserID:     user.ID,
			Email:      user.Email,
			Enabled:    false,
			Method:     factor.String(),
			OccurredAt: now,
		})
	})

	return &DisableTFAOutput{AccessToken: access}, nil
}
