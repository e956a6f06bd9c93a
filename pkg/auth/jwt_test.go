package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/campusmart/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)

	token, err := m.GenerateToken("68b1c2d3e4f5a6b7c8d9e0f1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "68b1c2d3e4f5a6b7c8d9e0f1", claims.UserID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := auth.NewManager("secret-a", time.Hour).GenerateToken("user-1")
	require.NoError(t, err)

	_, err = auth.NewManager("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	m := auth.NewManager("secret", time.Millisecond)

	token, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)
	_, err := m.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestHashSecret(t *testing.T) {
	hash, err := auth.HashSecret("482913")
	require.NoError(t, err)
	assert.NotEqual(t, "482913", hash)

	assert.True(t, auth.CheckSecret(hash, "482913"))
	assert.False(t, auth.CheckSecret(hash, "482914"))
	assert.False(t, auth.CheckSecret("", "482913"))
}
