package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T, accessTTL, refreshTTL time.Duration) *Issuer {
	t.Helper()
	iss, err := NewIssuer("wayline-auth",
		[]byte("access-secret-for-tests-0123456789"),
		[]byte("refresh-secret-for-tests-987654321"),
		accessTTL, refreshTTL)
	require.NoError(t, err)
	return iss
}

func TestNewIssuerRejectsBadSecrets(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("iss", nil, []byte("b"), 0, 0)
	require.Error(t, err)

	_, err = NewIssuer("iss", []byte("same"), []byte("same"), 0, 0)
	require.Error(t, err)
}

func TestIssuePairRoundTrip(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, time.Minute, time.Hour)

	access, refresh, err := iss.IssuePair("user-1", "alice@x.com", "user")
	require.NoError(t, err)

	ac, err := iss.VerifyAccess(access)
	require.NoError(t, err)
	require.Equal(t, "user-1", ac.Subject)
	require.Equal(t, "alice@x.com", ac.Email)
	require.Equal(t, "user", ac.Role)
	require.Len(t, ac.ID, 32) // 128-bit hex jti

	rc, err := iss.VerifyRefresh(refresh)
	require.NoError(t, err)
	require.Equal(t, "user-1", rc.Subject)
	require.Equal(t, "alice@x.com", rc.Email)
}

func TestJTIUniquePerPair(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, time.Minute, time.Hour)

	a1, _, err := iss.IssuePair("u", "e@x.com", "user")
	require.NoError(t, err)
	a2, _, err := iss.IssuePair("u", "e@x.com", "user")
	require.NoError(t, err)

	c1, err := iss.VerifyAccess(a1)
	require.NoError(t, err)
	c2, err := iss.VerifyAccess(a2)
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
}

func TestVerifyFailsAfterExpiry(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, -time.Second, -time.Second)

	access, refresh, err := iss.IssuePair("u", "e@x.com", "user")
	require.NoError(t, err)

	_, err = iss.VerifyAccess(access)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = iss.VerifyRefresh(refresh)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyFailsOnTamperedSignature(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, time.Minute, time.Hour)

	access, _, err := iss.IssuePair("u", "e@x.com", "user")
	require.NoError(t, err)

	// Flip one bit in the signature segment.
	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	sig[0] ^= 0x01
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = iss.VerifyAccess(tampered)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSecretsAreIndependent(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, time.Minute, time.Hour)

	access, refresh, err := iss.IssuePair("u", "e@x.com", "user")
	require.NoError(t, err)

	// An access token must never verify as a refresh token, and vice versa.
	_, err = iss.VerifyRefresh(access)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = iss.VerifyAccess(refresh)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokenOmitsRole(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, time.Minute, time.Hour)

	_, refresh, err := iss.IssuePair("u", "e@x.com", "admin")
	require.NoError(t, err)

	parts := strings.Split(refresh, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	require.NotContains(t, raw, "role")
	require.NotContains(t, raw, "jti")
}

func TestDecodeExpiryUnsafe(t *testing.T) {
	t.Parallel()
	iss := testIssuer(t, time.Minute, time.Hour)

	_, refresh, err := iss.IssuePair("u", "e@x.com", "user")
	require.NoError(t, err)

	exp, err := iss.DecodeExpiryUnsafe(refresh)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	_, err = iss.DecodeExpiryUnsafe("garbage")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
