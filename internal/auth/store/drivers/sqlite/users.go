package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wayline/fleet/internal/auth/domain"
	"github.com/wayline/fleet/internal/auth/store"
)

type usersRepo struct {
	q queryer
}

const userColumns = `
	id, email, password_hash, refresh_token_hash,
	failed_login_attempts, locked_until,
	is_active, email_verified, role,
	provider, provider_user_id, totp_secret,
	last_login_at, last_login_ip,
	version, created_at, updated_at`

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                domain.User
		passwordHash     sql.NullString
		refreshTokenHash sql.NullString
		lockedUntil      sql.NullTime
		providerUserID   sql.NullString
		totpSecret       sql.NullString
		lastLoginAt      sql.NullTime
		lastLoginIP      sql.NullString
		provider         string
	)

	err := row.Scan(
		&u.ID, &u.Email, &passwordHash, &refreshTokenHash,
		&u.FailedLoginAttempts, &lockedUntil,
		&u.IsActive, &u.EmailVerified, &u.Role,
		&provider, &providerUserID, &totpSecret,
		&lastLoginAt, &lastLoginIP,
		&u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.PasswordHash = mapNullStringPtr(passwordHash)
	u.RefreshTokenHash = mapNullStringPtr(refreshTokenHash)
	u.LockedUntil = mapNullTimePtr(lockedUntil)
	u.Provider = domain.Provider(provider)
	u.ProviderUserID = mapNullStringPtr(providerUserID)
	u.TOTPSecret = mapNullStringPtr(totpSecret)
	u.LastLoginAt = mapNullTimePtr(lastLoginAt)
	u.LastLoginIP = mapNullStringPtr(lastLoginIP)
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT`+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT`+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, refresh_token_hash,
			failed_login_attempts, locked_until,
			is_active, email_verified, role,
			provider, provider_user_id, totp_secret,
			last_login_at, last_login_ip,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, 0, NULL, ?, ?, ?, ?, ?, ?, NULL, NULL, 1, ?, ?)`,
		u.ID, u.Email,
		mapOptionalString(u.PasswordHash), mapOptionalString(u.RefreshTokenHash),
		u.IsActive, u.EmailVerified, u.Role,
		string(u.Provider), mapOptionalString(u.ProviderUserID), mapOptionalString(u.TOTPSecret),
		now, now,
	)
	return mapUnique(err)
}

func (r *usersRepo) RecordLoginSuccess(ctx context.Context, userID, refreshHash, ip string, at time.Time) error {
	// Unversioned like ClearRefreshTokenHash: concurrent logins race benignly
	// and the last writer owns the single session slot. The version still
	// bumps so in-flight rotations observe the stamp.
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			refresh_token_hash = ?,
			failed_login_attempts = 0,
			locked_until = NULL,
			last_login_at = ?,
			last_login_ip = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ?`,
		refreshHash, at, ip, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdateRefreshTokenHash(ctx context.Context, userID, refreshHash string, version int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			refresh_token_hash = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?`,
		refreshHash, time.Now().UTC(), userID, version,
	)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, userID)
}

func (r *usersRepo) ClearRefreshTokenHash(ctx context.Context, userID string) error {
	// Deliberately unversioned: terminating a session must win any race.
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			refresh_token_hash = NULL,
			version = version + 1,
			updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) UpdateLockout(ctx context.Context, userID string, attempts int, lockedUntil *time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			failed_login_attempts = ?,
			locked_until = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ?`,
		attempts, mapOptionalTime(lockedUntil), time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) LinkProvider(ctx context.Context, userID, provider, externalID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			provider = ?,
			provider_user_id = ?,
			email_verified = 1,
			version = version + 1,
			updated_at = ?
		WHERE id = ?`,
		provider, externalID, time.Now().UTC(), userID,
	)
	if err != nil {
		return mapUnique(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SetTOTPSecret(ctx context.Context, userID string, secret *string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			totp_secret = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ?`,
		mapOptionalString(secret), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			is_active = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ?`,
		active, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// checkAffected disambiguates a zero-row version-checked update: the row is
// either gone (ErrNotFound) or was touched by a concurrent writer
// (ErrConflict).
func (r *usersRepo) checkAffected(ctx context.Context, res sql.Result, userID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return store.ErrConflict
}
