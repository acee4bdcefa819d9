package jwt

import (
	"testing"
	"time"

	"medicare-backend/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 2 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := testService()
	userID := uuid.New()

	token, tokenID, err := service.GenerateAccessToken(userID, "Alice", "alice@example.com", "patient")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "patient", claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestRefreshTokenHasOwnType(t *testing.T) {
	service := testService()

	token, _, err := service.GenerateRefreshToken(uuid.New(), "Alice", "alice@example.com", "patient")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestTokenIDsAreUnique(t *testing.T) {
	service := testService()
	userID := uuid.New()

	_, first, err := service.GenerateAccessToken(userID, "Alice", "alice@example.com", "patient")
	require.NoError(t, err)
	_, second, err := service.GenerateAccessToken(userID, "Alice", "alice@example.com", "patient")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := testService().GenerateAccessToken(uuid.New(), "Alice", "alice@example.com", "patient")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "different-secret", AccessExpiry: time.Hour, RefreshExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testService().ValidateToken("not.a.token")
	assert.Error(t, err)
}
