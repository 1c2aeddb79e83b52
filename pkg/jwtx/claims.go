package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens bound the damage of a leaked bearer
// string; the refresh TTL is the effective session length.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims is the payload carried by access tokens. The jti (RegisteredClaims.ID)
// enables targeted revocation of a still-valid token on logout.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// Role is the coarse role flag ("user", "admin"). Authorization beyond
	// this flag is out of scope for the auth core.
	Role string `json:"role,omitempty"`
}

// RefreshClaims is the deliberately reduced payload of refresh tokens:
// subject and email only. Role and other authorization claims are excluded so
// a stale refresh token cannot be replayed to infer permission changes.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
}
