package domain

import "time"

// Provider identifies how an account authenticates.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderOAuth Provider = "oauth"
)

// Role values. Authorization beyond this coarse flag is out of scope.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account record as seen by the auth core. The row is owned by
// the user store; this core reads it and mutates a narrow set of fields:
// lockout counters (credential validation), the refresh-token hash (session
// manager) and the login audit stamps.
//
// Invariant: RefreshTokenHash is set iff a session is currently active, and
// it is always a bcrypt hash over the token fingerprint, never the raw token.
type User struct {
	ID    string
	Email string // stored lowercased; unique

	// PasswordHash is nil for OAuth-only accounts.
	PasswordHash *string

	// RefreshTokenHash is nil when no session is active.
	RefreshTokenHash *string

	FailedLoginAttempts int
	LockedUntil         *time.Time

	IsActive      bool
	EmailVerified bool
	Role          string

	Provider       Provider
	ProviderUserID *string

	// TOTPSecret is set once the user has confirmed TOTP enrollment.
	TOTPSecret *string

	LastLoginAt *time.Time
	LastLoginIP *string

	// Version guards the row against lost updates from concurrent writers.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether local credential login is possible at all.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// TOTPEnabled reports whether login requires a TOTP code.
func (u *User) TOTPEnabled() bool {
	return u.TOTPSecret != nil && *u.TOTPSecret != ""
}
