package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/idempotency"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/mfa"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/otp"
)

type EnableTFAOutput struct {
	QRCodeURL   string
	Secret      string
	BackupCodes []string
	AccessToken string
}

// EnableTFA enrolls the caller in two-factor authentication. The secret,
// the backup codes and the enabled flag are stored together; the plaintext
// codes are returned once and never again.
func (s *Usecase) EnableTFA(ctx context.Context) (*EnableTFAOutput, error) {
	ctx, span := s.startSpan(ctx, "EnableTFA")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Unauthorized", goerror.CodeUnauthorized)
	}

	var out *EnableTFAOutput
	err := s.idemp.Exec(ctx, "tfa-enroll:"+clm.UserID, func(ctx context.Context) error {
		var err error
		out, err = s.enrollTFA(ctx, clm.UserID)
		return err
	}, idempotency.WithLockDuration(s.cfg.GetSecond("modules.identity.tfa_enroll_lock_seconds")))
	if errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.WarnContext(ctx, "2fa enrollment already in progress", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("Two-factor authentication enrollment already in progress", goerror.CodeConflict)
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to acquire 2fa enrollment lock", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

func (s *Usecase) enrollTFA(ctx context.Context, userID string) (*EnableTFAOutput, error) {
	alreadyEnabled := goerror.NewValidation("Two-factor authentication is already enabled")

	user, err := s.repoDB.GetUserByID(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", userID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.TfaEnabled {
		return nil, alreadyEnabled
	}

	secret, uri, err := s.totp.Generate(user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	qr, err := otp.QRCode(uri)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render totp qr code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sealed, err := mfa.SealString(s.mfaEncryptor, secret, mfa.OTPSeed(user.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	codes, err := s.backupCodes.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate backup codes", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	stored := make([]entity.BackupCode, 0, len(codes))
	for _, code := range codes {
		digest, err := s.hmac.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash backup code", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		stored = append(stored, entity.BackupCode{ID: s.uid.Generate(), UserID: user.ID, Code: string(digest)})
	}

	now := s.clock.Now()
	err = s.repoDB.EnableTwoFactor(ctx, entity.EnableTFA{
		UserID: user.ID,
		Secret: sealed,
		Codes:  stored,
		Now:    now,
	})
	if errors.Is(err, goerror.ErrConflict) {
		return nil, alreadyEnabled
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo enable two factor", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	access, err := s.issueAccess(ctx, subjectOf(user))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "tfa_enabled", func(ctx context.Context) error {
		return s.repoMessaging.PublishTfaChanged(ctx, TfaChangedEvent{
			UserID:     user.ID,
			Email:      user.Email,
			Enabled:    true,
			OccurredAt: now,
		})
	})

	return &EnableTFAOutput{
		QRCodeURL:   qr,
		Secret:      secret,
		BackupCodes: codes,
		AccessToken: access,
	}, nil
}
