package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTokenRoundTrip(t *testing.T) {
	hash, err := HashToken("some-refresh-token")
	require.NoError(t, err)

	assert.True(t, CheckToken(hash, "some-refresh-token"))
	assert.False(t, CheckToken(hash, "another-token"))
	assert.False(t, CheckToken("not-a-bcrypt-hash", "some-refresh-token"))
}

func TestHashTokenHandlesLongTokens(t *testing.T) {
	// Signed JWTs are far past bcrypt's 72-byte input limit.
	long := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 20)
	hash, err := HashToken(long)
	require.NoError(t, err)

	assert.True(t, CheckToken(hash, long))
	assert.False(t, CheckToken(hash, long+"x"))
}
