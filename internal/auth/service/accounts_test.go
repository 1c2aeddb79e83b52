package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestTOTPEnrollmentAndLogin(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	u := e.register(t, "nina@x.com", "Secret123!")

	secret, otpauthURL, err := e.accounts.ProvisionTOTP(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, secret)
	require.Contains(t, otpauthURL, "otpauth://totp/")

	// Enrollment only completes with proof of possession.
	require.ErrorIs(t, e.accounts.EnableTOTP(ctx, u.ID, secret, "000000"), ErrOTPInvalid)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.accounts.EnableTOTP(ctx, u.ID, secret, code))

	u, err = e.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, u.TOTPEnabled())

	// Login now demands a code.
	_, err = e.sessions.Login(ctx, u, "", "")
	require.ErrorIs(t, err, ErrOTPRequired)

	_, err = e.sessions.Login(ctx, u, "", "000000")
	require.ErrorIs(t, err, ErrOTPInvalid)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	pair, err := e.sessions.Login(ctx, u, "", code)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}

func TestDisableTOTP(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	u := e.register(t, "oscar@x.com", "Secret123!")

	// Disabling an account without the factor is a no-op.
	require.NoError(t, e.accounts.DisableTOTP(ctx, u.ID, ""))

	secret, _, err := e.accounts.ProvisionTOTP(ctx, u.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.accounts.EnableTOTP(ctx, u.ID, secret, code))

	require.ErrorIs(t, e.accounts.DisableTOTP(ctx, u.ID, "000000"), ErrOTPInvalid)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.accounts.DisableTOTP(ctx, u.ID, code))

	u, err = e.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, u.TOTPEnabled())
}
