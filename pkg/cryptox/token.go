package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy.
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (recommended).
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the given
// byte length, returned base64url-encoded without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewJTI returns a fresh 128-bit token identifier, hex-encoded, for the "jti"
// claim. Hex keeps the id safe to embed in cache keys without escaping.
func NewJTI() (string, error) {
	var b [TokenSize128]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// FingerprintToken returns a deterministic SHA-256 digest of a token,
// hex-encoded. Side stores index tokens by fingerprint so the raw secret is
// never written anywhere.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
