package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password";
	// the two are indistinguishable on purpose to block user enumeration.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrAccountInactive = errors.New("account_inactive")
	ErrEmailTaken      = errors.New("email_taken")
	ErrWeakPassword    = errors.New("weak_password")

	// ErrSessionExpired means the refresh token no longer maps to an active
	// session; the client should log in again.
	ErrSessionExpired = errors.New("session_expired")

	// ErrSessionCompromised means the refresh flow detected a replayed or
	// mismatched token and terminated the whole session.
	ErrSessionCompromised = errors.New("session_compromised")

	ErrOTPRequired = errors.New("otp_required")
	ErrOTPInvalid  = errors.New("otp_invalid")
)

// AccountLockedError reports a temporarily locked account, including how long
// the caller has to wait. This is the one login failure that deliberately
// carries detail.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	remaining := time.Until(e.Until).Round(time.Minute)
	if remaining < time.Minute {
		remaining = time.Minute
	}
	return fmt.Sprintf("account_locked: try again in %d minutes", int(remaining.Minutes()))
}
