package store

import (
	"context"
	"errors"
	"time"

	"github.com/wayline/fleet/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a version-checked update that observed a stale
	// version; the row was modified by a concurrent writer.
	ErrConflict = errors.New("store: version conflict")
)

// Store is the root data access interface the auth core consumes. Concrete
// drivers (sqlite here, postgres elsewhere in the product) implement it.
// Only the user repository is exposed; all other session truth lives in the
// revocation side-store.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Write transactions serialize on the database write lock, which is what
	// the upsert flows rely on to prevent duplicate-account races.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rollback when fn errors,
	// commit otherwise. Preferred over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the repository contract over the user rows. Secret fields
// (password hash, refresh hash, TOTP secret) are always selected; the auth
// core is the only consumer of this interface.
type Users interface {
	// GetUserByEmail looks a user up by lowercased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	// A duplicate email or provider identity maps to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// RecordLoginSuccess stamps a successful login in one write: stores the
	// new refresh hash, zeroes the lockout state, sets last_login_at/ip.
	// Unversioned: concurrent logins are benign and the last writer wins the
	// single session slot.
	RecordLoginSuccess(ctx context.Context, userID, refreshHash, ip string, at time.Time) error

	// UpdateRefreshTokenHash replaces the stored refresh hash (rotation).
	// Version-checked; returns ErrConflict on a stale version.
	UpdateRefreshTokenHash(ctx context.Context, userID, refreshHash string, version int64) error

	// ClearRefreshTokenHash terminates the session unconditionally. This is
	// the security action behind logout and theft response, so it ignores
	// the version counter and is idempotent.
	ClearRefreshTokenHash(ctx context.Context, userID string) error

	// UpdateLockout persists the failed-attempt counter and lock timestamp.
	UpdateLockout(ctx context.Context, userID string, attempts int, lockedUntil *time.Time) error

	// LinkProvider attaches an external provider identity to an existing
	// account and marks the email verified.
	LinkProvider(ctx context.Context, userID, provider, externalID string) error

	// SetTOTPSecret stores (or clears, with nil) the TOTP secret.
	SetTOTPSecret(ctx context.Context, userID string, secret *string) error

	// SetActive toggles the account gate.
	SetActive(ctx context.Context, userID string, active bool) error
}
