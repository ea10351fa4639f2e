package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken("access-secret", userID, "staff", 15*time.Minute)
	require.NoError(t, err)

	gotID, gotRole, err := ParseAccessToken("access-secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "staff", gotRole)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("access-secret", uuid.New(), "customer", 15*time.Minute)
	require.NoError(t, err)

	_, _, err = ParseAccessToken("other-secret", token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("access-secret", uuid.New(), "customer", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseAccessToken("access-secret", token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	tokenID := uuid.New()

	token, err := GenerateRefreshToken("refresh-secret", userID, tokenID, 720*time.Hour)
	require.NoError(t, err)

	gotUser, gotToken, err := ParseRefreshToken("refresh-secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, tokenID, gotToken)
}

func TestRefreshTokenNotValidAsAccessSecretMismatch(t *testing.T) {
	token, err := GenerateRefreshToken("refresh-secret", uuid.New(), uuid.New(), time.Hour)
	require.NoError(t, err)

	_, _, err = ParseRefreshToken("access-secret", token)
	assert.Error(t, err)
}
