package jwt

import (
	libJWT "github.com/golang-jwt/jwt/v5"
)

const minKeyBytes = 64

// Symmetric signs and verifies HS512 tokens with one secret.
type Symmetric struct {
	cfg    Config
	parser *libJWT.Parser
}

// NewHS512 constructs a Symmetric signer.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minKeyBytes {
		return nil, ErrSigningKeyTooShort
	}

	opts := []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(cfg.Clock.Now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, libJWT.WithIssuer(cfg.Issuer))
	}
	if len(cfg.Audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(cfg.Audiences...))
	}

	return &Symmetric{cfg: cfg, parser: libJWT.NewParser(opts...)}, nil
}

// Generate creates a signed token for sub, valid from now for the configured TTL.
func (s *Symmetric) Generate(sub Subject) (string, error) {
	now := s.cfg.Clock.Now()

	return libJWT.
		NewWithClaims(libJWT.SigningMethodHS512, Claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				ID:        s.cfg.UUID.Generate(),
				Subject:   sub.ID,
				Issuer:    s.cfg.Issuer,
				Audience:  s.cfg.Audiences,
				IssuedAt:  libJWT.NewNumericDate(now),
				NotBefore: libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(now.Add(s.cfg.TTL)),
			},
			UserID: sub.ID,
			Email:  sub.Email,
			Role:   sub.Role,
		}).
		SignedString(s.cfg.Secret)
}

// Verify parses tokenStr, checks the signature against this signer's key and
// validates the time claims against the configured clock.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := s.parser.ParseWithClaims(tokenStr, &claims, func(*libJWT.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	if err != nil {
		return Claims{}, mapError(err)
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

func (s *Symmetric) secret() []byte {
	return s.cfg.Secret
}
