package domain

import "time"

// LockoutTier maps a failed-attempt threshold to a lock duration.
type LockoutTier struct {
	Attempts int
	Duration time.Duration
}

// LockoutPolicy implements the progressive account lockout transitions on a
// user's (FailedLoginAttempts, LockedUntil) pair. Tiers must be ordered by
// descending attempt count.
type LockoutPolicy struct {
	Tiers []LockoutTier
}

// DefaultLockoutPolicy returns the standard progressive back-off:
// 5 failures lock for 5 minutes, 10 for 30 minutes, 15 for 24 hours.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		Tiers: []LockoutTier{
			{Attempts: 15, Duration: 24 * time.Hour},
			{Attempts: 10, Duration: 30 * time.Minute},
			{Attempts: 5, Duration: 5 * time.Minute},
		},
	}
}

// RecordFailure increments the failure counter and applies the lock duration
// of the highest tier reached, if any.
func (p LockoutPolicy) RecordFailure(u *User, now time.Time) {
	u.FailedLoginAttempts++
	for _, tier := range p.Tiers {
		if u.FailedLoginAttempts >= tier.Attempts {
			until := now.Add(tier.Duration)
			u.LockedUntil = &until
			return
		}
	}
}

// RecordSuccess resets the counter, clears any lock and stamps the login
// audit fields.
func (p LockoutPolicy) RecordSuccess(u *User, now time.Time, ip string) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	if ip != "" {
		u.LastLoginIP = &ip
	}
}

// IsLocked reports whether the account is locked at the given instant.
func (p LockoutPolicy) IsLocked(u *User, now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// LockRemaining returns how much lock time is left, or zero when unlocked.
func (p LockoutPolicy) LockRemaining(u *User, now time.Time) time.Duration {
	if !p.IsLocked(u, now) {
		return 0
	}
	return u.LockedUntil.Sub(now)
}
