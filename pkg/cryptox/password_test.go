package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	// MinHashCost keeps the test suite fast; cost is orthogonal to behavior.
	h, err := NewHasher(MinHashCost)
	require.NoError(t, err)
	return h
}

func TestHashAndCompare(t *testing.T) {
	t.Parallel()
	h := testHasher(t)

	hash, err := h.Hash("Secret123!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"))

	require.True(t, h.Compare("Secret123!", hash))
	require.False(t, h.Compare("wrong", hash))
}

func TestCompareMalformedHashFails(t *testing.T) {
	t.Parallel()
	h := testHasher(t)

	require.False(t, h.Compare("anything", "not-a-bcrypt-hash"))
	require.False(t, h.Compare("anything", ""))
}

func TestDummyHashIsValidBcrypt(t *testing.T) {
	t.Parallel()
	h := testHasher(t)

	dummy := h.DummyHash()
	require.True(t, strings.HasPrefix(dummy, "$2"))

	// Comparing against the dummy must execute the full algorithm and miss.
	require.False(t, h.Compare("Secret123!", dummy))
}

func TestHashTokenDistinguishesLongTokens(t *testing.T) {
	t.Parallel()
	h := testHasher(t)

	// Two tokens sharing a >72 byte prefix must still hash differently, which
	// is the reason tokens are fingerprinted before bcrypt.
	prefix := strings.Repeat("a", 100)
	hashA, err := h.HashToken(prefix + "x")
	require.NoError(t, err)

	require.True(t, h.CompareToken(prefix+"x", hashA))
	require.False(t, h.CompareToken(prefix+"y", hashA))
}

func TestNewHasherClampsCost(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(0)
	require.NoError(t, err)
	require.Equal(t, DefaultHashCost, h.Cost())

	h, err = NewHasher(99)
	require.NoError(t, err)
	require.Equal(t, DefaultHashCost, h.Cost())
}
