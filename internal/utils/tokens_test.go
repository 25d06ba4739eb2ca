package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dermacare/internal/models"
)

var testUser = &models.User{ID: 7, UserName: "alice", Email: "alice@x.com"}

func TestAccessToken_RoundTrip(t *testing.T) {
	secret := []byte("access-secret")

	token, err := NewAccessToken(testUser, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.Equal(t, "alice@x.com", claims.Email)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, err := NewAccessToken(testUser, []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, []byte("secret-b"))
	assert.Error(t, err)
}

func TestAccessToken_Expired(t *testing.T) {
	secret := []byte("access-secret")
	token, err := NewAccessToken(testUser, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, secret)
	assert.Error(t, err)
}

func TestRefreshToken_RoundTripAndUniqueness(t *testing.T) {
	secret := []byte("refresh-secret")

	first, err := NewRefreshToken(7, secret, time.Hour)
	require.NoError(t, err)
	second, err := NewRefreshToken(7, secret, time.Hour)
	require.NoError(t, err)

	// jti: два токена одного пользователя в одну секунду различаются
	assert.NotEqual(t, first, second)

	claims, err := ParseRefreshToken(first, secret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshToken_NotValidAsAccess(t *testing.T) {
	refreshSecret := []byte("refresh-secret")
	accessSecret := []byte("access-secret")

	token, err := NewRefreshToken(7, refreshSecret, time.Hour)
	require.NoError(t, err)

	// секреты разные, access-парсер refresh не примет
	_, err = ParseAccessToken(token, accessSecret)
	assert.Error(t, err)
}
