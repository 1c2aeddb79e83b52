package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb), mr
}

func TestRevokeAndCheck(t *testing.T) {
	t.Parallel()
	s, mr := newTestStore(t)
	ctx := context.Background()

	token := "eyJhbGciOiJIUzI1NiJ9.fake.refresh"
	require.False(t, s.IsRevoked(ctx, token))

	require.NoError(t, s.Revoke(ctx, token, time.Now().Add(time.Hour)))
	require.True(t, s.IsRevoked(ctx, token))
	require.False(t, s.IsRevoked(ctx, token+"x"))

	// Entries evict once the token would have expired anyway.
	mr.FastForward(2 * time.Hour)
	require.False(t, s.IsRevoked(ctx, token))
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	token := "already-expired"
	require.NoError(t, s.Revoke(ctx, token, time.Now().Add(-time.Minute)))
	require.False(t, s.IsRevoked(ctx, token))
}

func TestJTIRevocation(t *testing.T) {
	t.Parallel()
	s, mr := newTestStore(t)
	ctx := context.Background()

	jti := "0f2c9a4d6e8b1a3c5d7f9b0e2a4c6e8f"
	require.False(t, s.IsJTIRevoked(ctx, jti))

	require.NoError(t, s.RevokeJTI(ctx, jti, 15*time.Minute))
	require.True(t, s.IsJTIRevoked(ctx, jti))

	mr.FastForward(16 * time.Minute)
	require.False(t, s.IsJTIRevoked(ctx, jti))
}

func TestReadsFailOpen(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "token", time.Now().Add(time.Hour)))
	mr.Close()

	// With redis down, revocation checks must not lock everyone out.
	require.False(t, s.IsRevoked(ctx, "token"))
	require.False(t, s.IsJTIRevoked(ctx, "some-jti"))
	require.Error(t, s.Revoke(ctx, "other", time.Now().Add(time.Hour)))
}
