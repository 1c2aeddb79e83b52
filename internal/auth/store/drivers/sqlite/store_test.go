package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wayline/fleet/internal/auth/domain"
	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	hash := "$2a$10$abcdefghijklmnopqrstuvwxyz012345678901234567890123456"
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: &hash,
		IsActive:     true,
		Role:         domain.RoleUser,
		Provider:     domain.ProviderLocal,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))

	created, err := s.Users().GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return created
}

func TestCreateAndGetUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "driver@wayline.test")
	require.Equal(t, "driver@wayline.test", u.Email)
	require.True(t, u.IsActive)
	require.NotNil(t, u.PasswordHash)
	require.Nil(t, u.RefreshTokenHash)
	require.EqualValues(t, 1, u.Version)

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@wayline.test")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	seedUser(t, s, "dup@wayline.test")

	err := s.Users().CreateUser(context.Background(), domain.User{
		ID:       idx.New().String(),
		Email:    "dup@wayline.test",
		IsActive: true,
		Role:     domain.RoleUser,
		Provider: domain.ProviderLocal,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRecordLoginSuccess(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "login@wayline.test")
	until := time.Now().UTC().Add(time.Hour)
	require.NoError(t, s.Users().UpdateLockout(ctx, u.ID, 4, &until))

	u, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 4, u.FailedLoginAttempts)
	require.NotNil(t, u.LockedUntil)

	at := time.Now().UTC()
	require.NoError(t, s.Users().RecordLoginSuccess(ctx, u.ID, "hash-1", "198.51.100.7", at))

	u, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, u.FailedLoginAttempts)
	require.Nil(t, u.LockedUntil)
	require.NotNil(t, u.RefreshTokenHash)
	require.Equal(t, "hash-1", *u.RefreshTokenHash)
	require.NotNil(t, u.LastLoginIP)
	require.Equal(t, "198.51.100.7", *u.LastLoginIP)

	// The stamp is unversioned: a write carrying no version always lands,
	// and it still bumps the counter so rotations see the change.
	before := u.Version
	require.NoError(t, s.Users().RecordLoginSuccess(ctx, u.ID, "hash-2", "198.51.100.8", at))
	u, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-2", *u.RefreshTokenHash)
	require.Equal(t, before+1, u.Version)

	require.ErrorIs(t,
		s.Users().RecordLoginSuccess(ctx, "no-such-id", "hash-3", "", at),
		store.ErrNotFound)
}

func TestVersionedUpdateConflict(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "conflict@wayline.test")

	require.NoError(t, s.Users().UpdateRefreshTokenHash(ctx, u.ID, "hash-a", u.Version))

	// Replaying with the stale version must surface as a conflict.
	err := s.Users().UpdateRefreshTokenHash(ctx, u.ID, "hash-b", u.Version)
	require.ErrorIs(t, err, store.ErrConflict)

	// A vanished row is not a conflict.
	err = s.Users().UpdateRefreshTokenHash(ctx, "no-such-id", "hash-c", 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestClearRefreshTokenHashIdempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "clear@wayline.test")
	require.NoError(t, s.Users().UpdateRefreshTokenHash(ctx, u.ID, "hash-x", u.Version))

	require.NoError(t, s.Users().ClearRefreshTokenHash(ctx, u.ID))
	require.NoError(t, s.Users().ClearRefreshTokenHash(ctx, u.ID))

	u, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, u.RefreshTokenHash)
}

func TestLinkProvider(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "link@wayline.test")
	require.NoError(t, s.Users().LinkProvider(ctx, u.ID, "google", "google-uid-1"))

	u, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, u.EmailVerified)
	require.NotNil(t, u.ProviderUserID)
	require.Equal(t, "google-uid-1", *u.ProviderUserID)

	// Same external identity on a second account violates the unique index.
	other := seedUser(t, s, "link2@wayline.test")
	err = s.Users().LinkProvider(ctx, other.ID, "google", "google-uid-1")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSetTOTPSecretAndActive(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "totp@wayline.test")

	secret := "JBSWY3DPEHPK3PXP"
	require.NoError(t, s.Users().SetTOTPSecret(ctx, u.ID, &secret))
	u, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, u.TOTPEnabled())

	require.NoError(t, s.Users().SetTOTPSecret(ctx, u.ID, nil))
	require.NoError(t, s.Users().SetActive(ctx, u.ID, false))

	u, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, u.TOTPEnabled())
	require.False(t, u.IsActive)

	require.ErrorIs(t, s.Users().SetActive(ctx, "no-such-id", true), store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "tx@wayline.test")

	wantErr := store.ErrConflict
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().ClearRefreshTokenHash(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.Users().SetActive(ctx, u.ID, false); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	u, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, u.IsActive)
}
