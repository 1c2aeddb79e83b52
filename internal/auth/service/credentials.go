package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wayline/fleet/internal/auth/domain"
	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/pkg/cryptox"
	"github.com/wayline/fleet/pkg/slogx"
)

// CredentialValidator verifies email/password pairs. Every failure path runs
// a full-cost bcrypt comparison so latency does not reveal whether the
// account exists.
type CredentialValidator struct {
	Store   store.Store
	Hasher  *cryptox.Hasher
	Lockout domain.LockoutPolicy
}

// Validate checks the pair and returns the matching user. Mismatches and
// unknown accounts both come back as ErrInvalidCredentials; locked and
// inactive accounts get their own errors once the password itself checked out
// structurally.
func (v *CredentialValidator) Validate(ctx context.Context, email, password, requestIP string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()
	email = strings.ToLower(strings.TrimSpace(email))

	// 1. Look the user up by lowercased email.
	user, err := v.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// 2. Burn the same bcrypt cost as the "user exists, wrong
			// password" path.
			v.Hasher.Compare(password, v.Hasher.DummyHash())
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	// 3. Compare the password. OAuth-only accounts have no password, so the
	// dummy comparison stands in and the attempt can never succeed. Either
	// way a miss counts against the lockout policy, even when the account is
	// already locked.
	matched := false
	if user.HasPassword() {
		matched = v.Hasher.Compare(password, *user.PasswordHash)
	} else {
		v.Hasher.Compare(password, v.Hasher.DummyHash())
	}
	if !matched {
		v.Lockout.RecordFailure(&user, now)
		if v.Lockout.IsLocked(&user, now) {
			l.Info("account locked after repeated failures",
				slog.String("user_id", user.ID),
				slog.Int("attempts", user.FailedLoginAttempts),
				slog.String("request_ip", requestIP),
			)
		}
		if err := v.Store.Users().UpdateLockout(ctx, user.ID, user.FailedLoginAttempts, user.LockedUntil); err != nil {
			// Best effort: a failed counter write must not change the outcome.
			l.Warn("failed to persist lockout state",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return domain.User{}, ErrInvalidCredentials
	}

	// 4. A correct password against a locked account reveals the lock.
	if v.Lockout.IsLocked(&user, now) {
		return domain.User{}, &AccountLockedError{Until: *user.LockedUntil}
	}

	// 5. Deactivated accounts never authenticate.
	if !user.IsActive {
		return domain.User{}, ErrAccountInactive
	}

	return user, nil
}
