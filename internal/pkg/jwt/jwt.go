package jwt

import (
	"context"
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

var (
	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrKeysMustDiffer is returned when access and refresh tokens would share a key.
	ErrKeysMustDiffer = errors.New("access and refresh signing keys must differ")

	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidSignature is returned when the signature does not match the key.
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrTokenMalformed is returned when the token cannot be parsed.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrInvalidToken is returned for any other validation failure.
	ErrInvalidToken = errors.New("invalid token")
)

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for one signing key.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is written to and required on tokens when set.
	Issuer string
	// Audiences are written to and accepted on tokens when set.
	Audiences []string
	// TTL is the token lifetime.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Subject is the identity a token is issued for.
type Subject struct {
	ID    string
	Email string
	Role  rbac.Role
}

// Claims is the token payload: the registered claims plus the identity.
type Claims struct {
	libJWT.RegisteredClaims
	// UserID is the identity id.
	UserID string `json:"id"`
	// Email is the identity email at issue time.
	Email string `json:"email"`
	// Role is the identity role at issue time.
	Role rbac.Role `json:"role"`
}

// Subject returns the identity carried by the claims.
func (c Claims) Subject() Subject {
	return Subject{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// GetAuth returns the claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, libJWT.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, libJWT.ErrTokenSignatureInvalid), errors.Is(err, libJWT.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, libJWT.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
