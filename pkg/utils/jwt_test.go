package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_TokenPairRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "deepwriting-api")

	pair, err := m.GenerateTokenPair("user-1", 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "access", access.Type)
	assert.Equal(t, "deepwriting-api", access.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", "deepwriting-api")
	other := NewJWTManager("secret-b", "deepwriting-api")

	token, err := m.GenerateToken("user-1", "access", time.Minute)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "deepwriting-api")

	token, err := m.GenerateToken("user-1", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", "deepwriting-api")

	_, err := m.ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
