package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wayline/fleet/pkg/cryptox"
)

var (
	// ErrTokenInvalid covers every verification failure: bad signature,
	// expired, malformed, wrong algorithm. Callers get no finer detail.
	ErrTokenInvalid = errors.New("jwtx: invalid token")
)

var signingMethods = []string{jwt.SigningMethodHS256.Alg()}

// Issuer mints and verifies the access/refresh token pair. Access and refresh
// tokens are signed with separate secrets so compromise of one key space does
// not compromise the other.
type Issuer struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer. Zero TTLs fall back to the package defaults.
func NewIssuer(issuer string, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("jwtx: access and refresh secrets are required")
	}
	if string(accessSecret) == string(refreshSecret) {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Issuer{
		issuer:        issuer,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssuePair signs a fresh access/refresh token pair for the given subject.
// The access token carries the full claim set including a unique jti; the
// refresh token carries subject and email only.
func (i *Issuer) IssuePair(userID, email, role string) (accessToken, refreshToken string, err error) {
	now := time.Now().UTC()

	jti, err := cryptox.NewJTI()
	if err != nil {
		return "", "", err
	}

	access := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			ID:        jti,
		},
		Email: email,
		Role:  role,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(i.accessSecret)
	if err != nil {
		return "", "", fmt.Errorf("jwtx: sign access token: %w", err)
	}

	refresh := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
		Email: email,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(i.refreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("jwtx: sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// VerifyAccess validates signature and expiry of an access token.
func (i *Issuer) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.verify(token, claims, i.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry of a refresh token.
func (i *Issuer) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.verify(token, claims, i.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *Issuer) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods(signingMethods),
		jwt.WithIssuer(i.issuer),
	)
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return nil
}

// DecodeExpiryUnsafe extracts the exp claim without verifying the signature.
// Used only to compute a revocation TTL, never for authorization decisions.
func (i *Issuer) DecodeExpiryUnsafe(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrTokenInvalid)
	}
	return claims.ExpiresAt.Time, nil
}
