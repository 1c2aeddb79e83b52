package cryptox

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultHashCost targets roughly 100ms+ per hash on commodity hardware.
	DefaultHashCost = 12

	// MinHashCost is the lowest cost we accept from configuration. Anything
	// below this hashes too fast to be a meaningful brute-force barrier.
	MinHashCost = bcrypt.MinCost
)

// Hasher wraps bcrypt for password and refresh-token-at-rest storage.
// The zero value is not usable; construct with NewHasher.
type Hasher struct {
	cost  int
	dummy string
}

// NewHasher builds a Hasher with the given cost factor. The dummy hash used
// for timing mitigation is generated here so it always matches the configured
// cost and is a structurally valid bcrypt string.
func NewHasher(cost int) (*Hasher, error) {
	if cost < MinHashCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}

	filler, err := GenerateToken(TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate dummy material: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(filler), cost)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate dummy hash: %w", err)
	}

	return &Hasher{cost: cost, dummy: string(dummy)}, nil
}

// Hash applies a salted bcrypt hash to the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash: %w", err)
	}
	return string(out), nil
}

// Compare reports whether plaintext matches the encoded bcrypt hash.
// Malformed hash input counts as a mismatch; bcrypt's own verify routine is
// constant-time over the digest comparison.
func (h *Hasher) Compare(plaintext, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
}

// HashToken hashes a bearer token for at-rest storage. bcrypt truncates its
// input at 72 bytes and JWTs share a long common prefix, so the token is
// first reduced to its SHA-256 fingerprint.
func (h *Hasher) HashToken(token string) (string, error) {
	return h.Hash(FingerprintToken(token))
}

// CompareToken reports whether token matches a hash produced by HashToken.
func (h *Hasher) CompareToken(token, encoded string) bool {
	return h.Compare(FingerprintToken(token), encoded)
}

// DummyHash returns a valid bcrypt hash of random material at the configured
// cost. Comparing against it burns the full algorithm cost without ever
// matching caller input, which keeps the no-such-user path indistinguishable
// from the wrong-password path.
func (h *Hasher) DummyHash() string {
	return h.dummy
}

// Cost returns the configured bcrypt cost factor.
func (h *Hasher) Cost() int {
	return h.cost
}
