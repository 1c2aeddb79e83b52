package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pquerna/otp/totp"

	"github.com/wayline/fleet/internal/auth/domain"
	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/pkg/cryptox"
	"github.com/wayline/fleet/pkg/idx"
)

const minPasswordLength = 8

// AccountService handles registration and TOTP enrollment.
type AccountService struct {
	Store  store.Store
	Hasher *cryptox.Hasher

	// TOTPIssuer is the issuer label shown in authenticator apps.
	TOTPIssuer string
}

// Register creates a local account. The uniqueness check and the insert run
// in one write transaction so two racing registrations for the same email
// resolve to exactly one row; the loser sees ErrEmailTaken, not a 500.
func (a *AccountService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := a.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	var user domain.User
	err = a.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		created := domain.User{
			ID:           idx.New().String(),
			Email:        email,
			PasswordHash: &hash,
			IsActive:     true,
			Role:         domain.RoleUser,
			Provider:     domain.ProviderLocal,
		}
		if err := tx.Users().CreateUser(ctx, created); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		var err error
		user, err = tx.Users().GetUserByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// ProvisionTOTP generates a new TOTP secret for the user. Nothing is stored
// yet; the client must echo a valid code back through EnableTOTP to prove
// the authenticator captured the secret.
func (a *AccountService) ProvisionTOTP(ctx context.Context, userID string) (secret, otpauthURL string, err error) {
	user, err := a.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.TOTPIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// EnableTOTP stores the secret once the user proves possession with a
// current code.
func (a *AccountService) EnableTOTP(ctx context.Context, userID, secret, code string) error {
	if !totp.Validate(code, secret) {
		return ErrOTPInvalid
	}
	return a.Store.Users().SetTOTPSecret(ctx, userID, &secret)
}

// DisableTOTP removes the factor; a current code is required so a stolen
// session alone cannot strip the account's second factor.
func (a *AccountService) DisableTOTP(ctx context.Context, userID, code string) error {
	user, err := a.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled() {
		return nil
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		return ErrOTPInvalid
	}
	return a.Store.Users().SetTOTPSecret(ctx, userID, nil)
}
