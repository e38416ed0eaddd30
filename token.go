package session

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"
)

// Credential is the token pair owned by the CredentialStore. The invariant is
// one-directional: no access token means no refresh token means anonymous.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// IsZero reports whether the pair carries no usable credential
func (c Credential) IsZero() bool {
	return c.AccessToken == ""
}

// TokenInfo is what the client can read out of an access token without the
// signing key. The server remains the authority on validity; this is only
// used for expiry hints and role recovery at startup.
type TokenInfo struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past. Tokens with
// no exp claim never report expired; the backend decides via 401.
func (t *TokenInfo) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return now.After(t.ExpiresAt)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid,omitempty"`
	Role string `json:"role,omitempty"`
}

// IntrospectToken parses the access token without verifying its signature.
func IntrospectToken(raw string) (*TokenInfo, error) {
	claims := &tokenClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse access token")
	}

	info := &TokenInfo{
		Subject: claims.Subject,
	}

	if claims.UID != "" {
		info.Subject = claims.UID
	}

	if role, ok := ParseRole(claims.Role); ok {
		info.Role = role
	}

	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info, nil
}
