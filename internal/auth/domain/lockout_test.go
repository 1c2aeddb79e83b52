package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockoutProgression(t *testing.T) {
	t.Parallel()

	policy := DefaultLockoutPolicy()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	u := &User{}

	// Four failures: counted, not locked.
	for range 4 {
		policy.RecordFailure(u, now)
	}
	require.Equal(t, 4, u.FailedLoginAttempts)
	require.False(t, policy.IsLocked(u, now))

	// Fifth failure locks for 5 minutes.
	policy.RecordFailure(u, now)
	require.True(t, policy.IsLocked(u, now))
	require.Equal(t, 5*time.Minute, policy.LockRemaining(u, now))

	// Tenth failure escalates to 30 minutes.
	for range 5 {
		policy.RecordFailure(u, now)
	}
	require.Equal(t, 10, u.FailedLoginAttempts)
	require.Equal(t, 30*time.Minute, policy.LockRemaining(u, now))

	// Fifteenth failure escalates to 24 hours.
	for range 5 {
		policy.RecordFailure(u, now)
	}
	require.Equal(t, 24*time.Hour, policy.LockRemaining(u, now))
}

func TestLockExpires(t *testing.T) {
	t.Parallel()

	policy := DefaultLockoutPolicy()
	now := time.Now().UTC()
	u := &User{}

	for range 5 {
		policy.RecordFailure(u, now)
	}
	require.True(t, policy.IsLocked(u, now))
	require.False(t, policy.IsLocked(u, now.Add(5*time.Minute+time.Second)))
}

func TestRecordSuccessResets(t *testing.T) {
	t.Parallel()

	policy := DefaultLockoutPolicy()
	now := time.Now().UTC()
	u := &User{}

	for range 7 {
		policy.RecordFailure(u, now)
	}
	require.True(t, policy.IsLocked(u, now))

	policy.RecordSuccess(u, now, "203.0.113.9")
	require.Zero(t, u.FailedLoginAttempts)
	require.Nil(t, u.LockedUntil)
	require.NotNil(t, u.LastLoginAt)
	require.Equal(t, "203.0.113.9", *u.LastLoginIP)
	require.False(t, policy.IsLocked(u, now))
}
