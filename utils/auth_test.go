package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.GenerateJWT("65f0c0ffee", "a@example.com", "user")
	require.NoError(t, err)

	claims, err := tm.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestTokenManager_RejectsForeignKey(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).GenerateJWT("u1", "a@example.com", "user")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ParseJWT(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", -time.Minute)
	token, err := tm.GenerateJWT("u1", "a@example.com", "user")
	require.NoError(t, err)

	_, err = tm.ParseJWT(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseJWT(signed)
	assert.Error(t, err)
}

func TestTokenManager_RequiresSubject(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.GenerateJWT("", "a@example.com", "user")
	require.NoError(t, err)

	_, err = tm.ParseJWT(token)
	assert.Error(t, err)
}
