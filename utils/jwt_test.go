package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmhub/config"
)

func TestJWTRoundTrip(t *testing.T) {
	config.LoadConfig()

	token, err := GenerateJWT("64f000000000000000000001", "Jane Doe", "jane@example.com", "manager")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)

	assert.Equal(t, "64f000000000000000000001", claims.UserID)
	assert.Equal(t, "64f000000000000000000001", claims.Subject)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	config.LoadConfig()

	claims, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
