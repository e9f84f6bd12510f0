// Package session extracts a nullable identity from an externally supplied
// access token. Authentication itself is an outside collaborator; this
// package only reads the claims it hands us.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the owner of identity-scoped local and remote state. A nil
// *Identity means anonymous: reads of public screens still work, every
// identity-scoped write fails fast.
type Identity struct {
	UserID string
	Token  string
}

// FromAccessToken parses a JWT access token into an Identity. The token's
// signature is the issuer's concern and is not verified here; malformed,
// subject-less or expired tokens all yield nil (anonymous).
func FromAccessToken(raw string) *Identity {
	if raw == "" {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}
	if claims.Subject == "" {
		return nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil
	}

	return &Identity{UserID: claims.Subject, Token: raw}
}
