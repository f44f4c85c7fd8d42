package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashThenVerify(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	for _, pw := range []string{"password", "correct horse battery staple", "ünïcødé-p@ss", ""} {
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, digest)
		assert.True(t, h.Verify(pw, digest), "password %q should verify", pw)
	}
}

func TestHasher_VerifyRejectsOtherPassword(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	digest, err := h.Hash("password")
	require.NoError(t, err)

	assert.False(t, h.Verify("wrongpassword", digest))
	assert.False(t, h.Verify("Password", digest))
}

func TestHasher_SaltedDigests(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("password")
	require.NoError(t, err)
	b, err := h.Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_MalformedDigest(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("password", ""))
	assert.False(t, h.Verify("password", "not-a-bcrypt-hash"))
}

func TestNewHasher_CostBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 10, NewHasher(10).cost)

	digest, err := NewHasher(0).Hash("password")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}
