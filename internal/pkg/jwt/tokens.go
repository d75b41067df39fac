package jwt

import (
	"crypto/hmac"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Tokens issues and verifies access and refresh tokens.
type Tokens struct {
	access  *Symmetric
	refresh *Symmetric
}

// NewTokens pairs an access signer with a refresh signer. The two must use
// different keys so a refresh token is never accepted as an access token.
func NewTokens(access, refresh *Symmetric) (*Tokens, error) {
	if hmac.Equal(access.secret(), refresh.secret()) {
		return nil, ErrKeysMustDiffer
	}
	return &Tokens{access: access, refresh: refresh}, nil
}

// IssueAccess mints an access token for sub.
func (t *Tokens) IssueAccess(sub Subject) (string, error) {
	return t.access.Generate(sub)
}

// IssueRefresh mints a refresh token for sub.
func (t *Tokens) IssueRefresh(sub Subject) (string, error) {
	return t.refresh.Generate(sub)
}

// VerifyAccess validates an access token.
func (t *Tokens) VerifyAccess(token string) (Claims, error) {
	return t.access.Verify(token)
}

// VerifyRefresh validates a refresh token.
func (t *Tokens) VerifyRefresh(token string) (Claims, error) {
	return t.refresh.Verify(token)
}

// DecodeUnverified reads the claims without checking the signature or the
// expiry. The result must never drive an authorization decision. Request
// flows do not call it: handlers read the claims the authentication
// middleware already verified, via GetAuth.
func (t *Tokens) DecodeUnverified(token string) (Claims, bool) {
	var claims Claims
	if _, _, err := libJWT.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}
