package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/clock"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/config"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goroutine"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/hash"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/idempotency"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/mfa"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/otp"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/uid"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/validator"
)

type UserRegisteredEvent struct {
	UserID     string
	Email      string
	Role       rbac.Role
	OccurredAt time.Time
}

type TfaChangedEvent struct {
	UserID     string
	Email      string
	Enabled    bool
	Method     string
	OccurredAt time.Time
}

type RoleChangedEvent struct {
	UserID     string
	From       rbac.Role
	To         rbac.Role
	By         string
	OccurredAt time.Time
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
	PublishTfaChanged(ctx context.Context, msg TfaChangedEvent) error
	PublishRoleChanged(ctx context.Context, msg RoleChangedEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserList(ctx context.Context) ([]entity.UserSummary, error)
	CountUnusedBackupCodes(ctx context.Context, userID string) (int, error)

	CreateUser(ctx context.Context, user entity.NewUser) (rbac.Role, error)

	ConsumeBackupCode(ctx context.Context, userID, digest string, at time.Time) (bool, error)
	UpdateRole(ctx context.Context, userID string, from, to rbac.Role, at time.Time) (bool, error)

	EnableTwoFactor(ctx context.Context, in entity.EnableTFA) error
	DisableTwoFactor(ctx context.Context, in entity.DisableTFA) error
}

type tokenService interface {
	IssueAccess(sub jwt.Subject) (string, error)
	IssueRefresh(sub jwt.Subject) (string, error)
	VerifyRefresh(token string) (jwt.Claims, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	mfaEncryptor  mfa.Encryptor
	backupCodes   mfa.BackupCodeGenerator
	uid           uid.NumberID
	uuid          uid.StringID
	totp          otp.OTP
	clock         clock.Clocker
	tokens        tokenService
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	MFAEncryptor  mfa.Encryptor
	BackupCodes   mfa.BackupCodeGenerator
	UID           uid.NumberID
	UUID          uid.StringID
	Totp          otp.OTP
	Clock         clock.Clocker
	Tokens        tokenService
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		mfaEncryptor:  dep.MFAEncryptor,
		backupCodes:   dep.BackupCodes,
		uid:           dep.UID,
		uuid:          dep.UUID,
		totp:          dep.Totp,
		clock:         dep.Clock,
		tokens:        dep.Tokens,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) issueAccess(ctx context.Context, sub jwt.Subject) (string, error) {
	token, err := s.tokens.IssueAccess(sub)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", sub.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}

func (s *Usecase) issuePair(ctx context.Context, sub jwt.Subject) (access, refresh string, err error) {
	if access, err = s.issueAccess(ctx, sub); err != nil {
		return "", "", err
	}

	refresh, err = s.tokens.IssueRefresh(sub)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate refresh jwt token", "user_id", sub.ID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	return access, refresh, nil
}

// publish runs fn in the background after the request has committed its
// state. Failures are logged only.
func (s *Usecase) publish(ctx context.Context, name string, fn func(ctx context.Context) error) {
	scheduled := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to publish event", "event", name, "error", err)
			return err
		}
		return nil
	})
	if !scheduled {
		slog.WarnContext(ctx, "event not published", "event", name)
	}
}

func subjectOf(u *entity.User) jwt.Subject {
	return jwt.Subject{ID: u.ID, Email: u.Email, Role: u.Role}
}
