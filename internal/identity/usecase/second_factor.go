package usecase

import (
	"context"
	"log/slog"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/mfa"
)

const (
	msgInvalidTfaToken   = "Invalid two-factor authentication token"
	msgInvalidBackupCode = "Invalid backup code"
)

// verifySecondFactor routes code by its length: 6 digits are checked against
// the TOTP secret, 8 digits consume a backup code. Anything else is rejected
// without touching storage.
func (s *Usecase) verifySecondFactor(ctx context.Context, user *entity.User, code string) (entity.SecondFactor, error) {
	factor := entity.SecondFactorOf(code)

	switch factor {
	case entity.SecondFactorTOTP:
		if !s.verifyTOTP(ctx, user, code) {
			slog.WarnContext(ctx, "invalid totp code", "user_id", user.ID)
			return factor, goerror.NewBusiness(msgInvalidTfaToken, goerror.CodeUnauthorized)
		}

	case entity.SecondFactorBackupCode:
		ok, err := s.consumeBackupCode(ctx, user.ID, code)
		if err != nil {
			return factor, err
		}
		if !ok {
			slog.WarnContext(ctx, "backup code not match or already used", "user_id", user.ID)
			return factor, goerror.NewBusiness(msgInvalidBackupCode, goerror.CodeUnauthorized)
		}

	default:
		slog.WarnContext(ctx, "second factor of unsupported length", "user_id", user.ID, "length", len(code))
		return factor, goerror.NewBusiness(msgInvalidTfaToken, goerror.CodeUnauthorized)
	}

	return factor, nil
}

// verifyTOTP reports whether code is valid for the current time step only.
// A missing or unreadable secret counts as a mismatch.
func (s *Usecase) verifyTOTP(ctx context.Context, user *entity.User, code string) bool {
	if user.TfaSecret == "" {
		slog.WarnContext(ctx, "2fa enabled without a stored secret", "user_id", user.ID)
		return false
	}

	secret, err := mfa.OpenString(s.mfaEncryptor, user.TfaSecret, mfa.OTPSeed(user.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "user_id", user.ID, "error", err)
		return false
	}

	return s.totp.Validate(code, secret, s.clock.Now())
}

// consumeBackupCode marks the code used and reports whether this call
// consumed it. A code already used or never issued yields false.
func (s *Usecase) consumeBackupCode(ctx context.Context, userID, code string) (bool, error) {
	digest, err := s.backupCodeDigest(ctx, userID, code)
	if err != nil {
		return false, err
	}

	ok, err := s.repoDB.ConsumeBackupCode(ctx, userID, digest, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume backup code", "user_id", userID, "error", err)
		return false, goerror.NewServer(err)
	}

	return ok, nil
}

func (s *Usecase) backupCodeDigest(ctx context.Context, userID, code string) (string, error) {
	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash backup code", "user_id", userID, "error", err)
		return "", goerror.NewServer(err)
	}
	return string(digest), nil
}
