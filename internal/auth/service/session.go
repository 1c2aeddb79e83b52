package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/wayline/fleet/internal/auth/domain"
	"github.com/wayline/fleet/internal/auth/revocation"
	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/pkg/cryptox"
	"github.com/wayline/fleet/pkg/idx"
	"github.com/wayline/fleet/pkg/jwtx"
	"github.com/wayline/fleet/pkg/slogx"
)

// SessionManager owns the refresh-token lifecycle. A session moves through
// NONE (no stored hash) -> ACTIVE (hash matches the latest issued refresh
// token) -> rotated back to ACTIVE on each refresh, or to NONE on logout or
// detected tampering. One session slot per user: a new login replaces any
// previous session.
type SessionManager struct {
	Store       store.Store
	Revocations *revocation.Store
	Issuer      *jwtx.Issuer
	Hasher      *cryptox.Hasher
}

// Login issues a token pair for an already-validated user and stamps the
// session onto the user row. otpCode is required once the user has enrolled
// a TOTP factor, ignored otherwise.
func (s *SessionManager) Login(ctx context.Context, user domain.User, requestIP, otpCode string) (*domain.TokenPair, error) {
	if user.TOTPEnabled() {
		if otpCode == "" {
			return nil, ErrOTPRequired
		}
		if !totp.Validate(otpCode, *user.TOTPSecret) {
			return nil, ErrOTPInvalid
		}
	}

	return s.issueSession(ctx, user, requestIP)
}

// OAuthLogin logs a provider-verified identity in, creating the account on
// first contact. The lookup and insert run in one write transaction so two
// racing first-logins serialize onto a single row; the loser re-reads the
// winner's row and both get a session for the same user id.
func (s *SessionManager) OAuthLogin(ctx context.Context, profile domain.OAuthProfile, requestIP string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" || profile.ExternalID == "" {
		return nil, ErrInvalidCredentials
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// Existing account: attach the provider identity if it isn't
			// linked yet, instead of creating a duplicate.
			if existing.ProviderUserID == nil {
				if err := tx.Users().LinkProvider(ctx, existing.ID, profile.Provider, profile.ExternalID); err != nil {
					return err
				}
				existing, err = tx.Users().GetUserByID(ctx, existing.ID)
				if err != nil {
					return err
				}
			} else if *existing.ProviderUserID != profile.ExternalID {
				l.Warn("oauth identity mismatch for email",
					slog.String("user_id", existing.ID),
					slog.String("provider", profile.Provider),
				)
				return ErrInvalidCredentials
			}
			user = existing
			return nil

		case errors.Is(err, store.ErrNotFound):
			created := domain.User{
				ID:             idx.New().String(),
				Email:          email,
				IsActive:       true,
				EmailVerified:  true, // trusted from the provider
				Role:           domain.RoleUser,
				Provider:       domain.ProviderOAuth,
				ProviderUserID: &profile.ExternalID,
			}
			if err := tx.Users().CreateUser(ctx, created); err != nil {
				return err
			}
			user, err = tx.Users().GetUserByID(ctx, created.ID)
			return err

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return s.issueSession(ctx, user, requestIP)
}

// Refresh rotates a refresh token. Presenting any token other than the
// current one is treated as theft: the whole session dies, never just the
// offending token.
func (s *SessionManager) Refresh(ctx context.Context, rawRefresh string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Issuer.VerifyRefresh(rawRefresh)
	if err != nil {
		return nil, ErrSessionExpired
	}
	userID := claims.Subject

	// 1. A denylisted token is a replay of one we already rotated out.
	if s.Revocations.IsRevoked(ctx, rawRefresh) {
		l.Warn("revoked refresh token replayed, terminating session",
			slog.String("user_id", userID))
		s.killSession(ctx, userID)
		return nil, ErrSessionCompromised
	}

	// 2. The session must still exist and the account must still be usable.
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if user.RefreshTokenHash == nil || !user.IsActive {
		return nil, ErrSessionExpired
	}

	// 3. A verified-but-mismatched token means the stored hash moved under
	// us: a concurrent newer login, or an attacker holding a leaked token.
	// Either way, kill the session.
	if !s.Hasher.CompareToken(rawRefresh, *user.RefreshTokenHash) {
		l.Warn("refresh token mismatch, terminating session",
			slog.String("user_id", userID))
		s.killSession(ctx, userID)
		return nil, ErrSessionCompromised
	}

	// 4. Rotation: denylist the incoming token for its remaining lifetime so
	// it can never be replayed, then swap in a fresh pair.
	if claims.ExpiresAt != nil {
		_ = s.Revocations.Revoke(ctx, rawRefresh, claims.ExpiresAt.Time)
	}

	access, refresh, err := s.Issuer.IssuePair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	newHash, err := s.Hasher.HashToken(refresh)
	if err != nil {
		return nil, err
	}

	err = s.Store.Users().UpdateRefreshTokenHash(ctx, user.ID, newHash, user.Version)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Someone else rotated between our read and write. Same
			// presumption of replay as a hash mismatch.
			s.killSession(ctx, user.ID)
			return nil, ErrSessionCompromised
		}
		return nil, err
	}

	return s.newPair(access, refresh), nil
}

// Logout ends the session. The refresh token and the access token's jti are
// denylisted so neither outlives the logout; both arguments may be empty.
// Calling Logout twice is fine.
func (s *SessionManager) Logout(ctx context.Context, userID, rawRefresh string, accessClaims *jwtx.AccessClaims) error {
	if rawRefresh != "" {
		if exp, err := s.Issuer.DecodeExpiryUnsafe(rawRefresh); err == nil {
			_ = s.Revocations.Revoke(ctx, rawRefresh, exp)
		}
	}

	if accessClaims != nil && accessClaims.ID != "" && accessClaims.ExpiresAt != nil {
		_ = s.Revocations.RevokeJTI(ctx, accessClaims.ID, time.Until(accessClaims.ExpiresAt.Time))
	}

	// Clearing the stored hash is the primary invalidation; the denylist
	// writes above are belt only.
	err := s.Store.Users().ClearRefreshTokenHash(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// ValidateAccessToken is the soft per-request check behind the bearer
// middleware: nil-and-no-error means "reject the request", an error means
// "the system broke".
func (s *SessionManager) ValidateAccessToken(ctx context.Context, claims *jwtx.AccessClaims) (*domain.User, error) {
	if s.Revocations.IsJTIRevoked(ctx, claims.ID) {
		return nil, nil
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return &user, nil
}

// issueSession mints a pair and persists the session in one login stamp. The
// stamp is an unconditional write: any number of concurrent logins for the
// same user succeed and the last one to land owns the session slot.
func (s *SessionManager) issueSession(ctx context.Context, user domain.User, requestIP string) (*domain.TokenPair, error) {
	access, refresh, err := s.Issuer.IssuePair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.Hasher.HashToken(refresh)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().RecordLoginSuccess(ctx, user.ID, hash, requestIP, time.Now().UTC()); err != nil {
		return nil, err
	}

	return s.newPair(access, refresh), nil
}

func (s *SessionManager) newPair(access, refresh string) *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.Issuer.AccessTTL().Seconds()),
	}
}

// killSession clears the stored refresh hash, terminating the session. Best
// effort: the caller is already returning a security error.
func (s *SessionManager) killSession(ctx context.Context, userID string) {
	if err := s.Store.Users().ClearRefreshTokenHash(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to clear refresh hash",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
