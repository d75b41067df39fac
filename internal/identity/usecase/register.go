package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/validator"
)

type RegisterInput struct {
	Email    string `validate:"email,max=254"`
	Password string
}

type RegisterOutput struct {
	User         entity.UserSummary
	AccessToken  string
	RefreshToken string
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, goerror.NewValidation("Both email and password are required")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if unmet := validator.UnmetRequirements(in.Password); len(unmet) > 0 {
		return nil, goerror.NewValidation("Password should have all of the following", passwordPolicyPairs(unmet)...)
	}

	hashed, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	user := entity.User{
		ID:        s.uuid.Generate(),
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	user.Role, err = s.repoDB.CreateUser(ctx, entity.NewUser{
		ID:       user.ID,
		Email:    user.Email,
		Password: string(hashed),
		Now:      now,
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "email already registered", "email", in.Email)
		return nil, goerror.NewBusiness("Email already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	access, refresh, err := s.issuePair(ctx, subjectOf(&user))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "user_registered", func(ctx context.Context) error {
		return s.repoMessaging.PublishUserRegistered(ctx, UserRegisteredEvent{
			UserID:     user.ID,
			Email:      user.Email,
			Role:       user.Role,
			OccurredAt: now,
		})
	})

	return &RegisterOutput{
		User:         user.Summary(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// passwordPolicyPairs lists the whole policy as key/value pairs so the client
// can render it next to the field. The length limit is added only when it
// was exceeded.
func passwordPolicyPairs(unmet []validator.Requirement) []string {
	kv := make([]string, 0, 2*len(validator.PasswordPolicy)+2)
	for _, r := range validator.PasswordPolicy {
		kv = append(kv, r.Key, r.Text)
	}
	if lo.Contains(unmet, validator.PasswordLimit) {
		kv = append(kv, validator.PasswordLimit.Key, validator.PasswordLimit.Text)
	}
	return kv
}
