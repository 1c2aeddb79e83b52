// Package revocation keeps the denylist of refresh tokens and access-token
// IDs in redis, keyed with a TTL matching the token's own expiry so entries
// evict themselves once the token could no longer verify anyway.
package revocation

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayline/fleet/pkg/cryptox"
	"github.com/wayline/fleet/pkg/slogx"
)

const (
	refreshKeyPrefix = "revoked:refresh:"
	jtiKeyPrefix     = "revoked:jti:"
)

// Store is the redis-backed denylist. Reads fail open: when redis is
// unreachable a token is treated as not revoked, because blocking every
// login on a cache outage is worse than honouring a token for the remainder
// of its lifetime. Writes are best effort for the same reason.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Ping verifies the redis connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Revoke denylists a raw refresh token until the instant it expires. Tokens
// already past expiry are skipped; the verifier rejects them on its own.
func (s *Store) Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	key := refreshKeyPrefix + cryptox.FingerprintToken(rawToken)
	if err := s.rdb.Set(ctx, key, "1", ttl).Err(); err != nil {
		slogx.FromContext(ctx).Warn("revocation write failed",
			slog.String("kind", "refresh"),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// IsRevoked reports whether a raw refresh token is on the denylist.
func (s *Store) IsRevoked(ctx context.Context, rawToken string) bool {
	key := refreshKeyPrefix + cryptox.FingerprintToken(rawToken)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		slogx.FromContext(ctx).Warn("revocation read failed, failing open",
			slog.String("kind", "refresh"),
			slog.String("error", err.Error()),
		)
		return false
	}
	return n > 0
}

// RevokeJTI denylists an access token by its jti claim for the given TTL.
func (s *Store) RevokeJTI(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.rdb.Set(ctx, jtiKeyPrefix+jti, "1", ttl).Err(); err != nil {
		slogx.FromContext(ctx).Warn("revocation write failed",
			slog.String("kind", "jti"),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// IsJTIRevoked reports whether an access-token id is on the denylist.
func (s *Store) IsJTIRevoked(ctx context.Context, jti string) bool {
	n, err := s.rdb.Exists(ctx, jtiKeyPrefix+jti).Result()
	if err != nil {
		slogx.FromContext(ctx).Warn("revocation read failed, failing open",
			slog.String("kind", "jti"),
			slog.String("error", err.Error()),
		)
		return false
	}
	return n > 0
}
