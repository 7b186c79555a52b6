package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(testPasswordParams)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"))
	assert.NotContains(t, hash, "secret1")

	assert.True(t, h.Verify(hash, "secret1"))
	assert.False(t, h.Verify(hash, "secret2"))
	assert.False(t, h.Verify(hash, ""))
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(testPasswordParams)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify(a, "secret1"))
	assert.True(t, h.Verify(b, "secret1"))
}

func TestPasswordHasher_VerifyUsesStoredParams(t *testing.T) {
	t.Parallel()
	hash, err := NewPasswordHasher(testPasswordParams).Hash("secret1")
	require.NoError(t, err)

	other := NewPasswordHasher(PasswordParams{Time: 2, Memory: 16 * 1024, Threads: 2, KeyLen: 16, SaltLen: 8})
	assert.True(t, other.Verify(hash, "secret1"))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(testPasswordParams)

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=0,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!!",
	} {
		assert.False(t, h.Verify(encoded, "secret1"), encoded)
	}
}
