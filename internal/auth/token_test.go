package auth

import (
	"testing"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTestUser() *models.User {
	return &models.User{
		ID:        "user123",
		Email:     "user@example.com",
		FirstName: "Nora",
		LastName:  "Hassan",
		UserType:  models.UserTypeApplicant,
	}
}

func TestTokenManager_MintAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret-test-secret-test-secret", 15*time.Minute, 24*time.Hour)

	token, err := tm.MintAccessToken(tokenTestUser())
	require.NoError(t, err)

	result := tm.Verify(token)
	require.Equal(t, TokenValid, result.State)
	assert.Equal(t, "access", result.Claims.Type)
	assert.Equal(t, "user123", result.Claims.Subject)
	assert.Equal(t, "Nora", result.Claims.FirstName)
	assert.Equal(t, "Hassan", result.Claims.LastName)
	assert.Equal(t, "user@example.com", result.Claims.Email)
	assert.Equal(t, models.UserTypeApplicant, result.Claims.UserType)
	assert.NotEmpty(t, result.Claims.ID)
}

func TestTokenManager_RefreshTokenType(t *testing.T) {
	tm := NewTokenManager("test-secret-test-secret-test-secret", 15*time.Minute, 24*time.Hour)

	token, err := tm.MintRefreshToken(tokenTestUser())
	require.NoError(t, err)

	result := tm.Verify(token)
	require.Equal(t, TokenValid, result.State)
	assert.Equal(t, "refresh", result.Claims.Type)
}

func TestTokenManager_RotatedSecretIsStale(t *testing.T) {
	oldTM := NewTokenManager("retired-secret-retired-secret", 15*time.Minute, 24*time.Hour)
	newTM := NewTokenManager("current-secret-current-secret", 15*time.Minute, 24*time.Hour)

	token, err := oldTM.MintAccessToken(tokenTestUser())
	require.NoError(t, err)

	result := newTM.Verify(token)
	require.Equal(t, TokenStale, result.State)
	// The unverified claims still expose the subject for the re-mint.
	require.NotNil(t, result.Claims)
	assert.Equal(t, "user123", result.Claims.Subject)
}

func TestTokenManager_ExpiredIsNotStale(t *testing.T) {
	minter := NewTokenManager("test-secret-test-secret-test-secret", -time.Minute, 24*time.Hour)
	verifier := NewTokenManager("test-secret-test-secret-test-secret", 15*time.Minute, 24*time.Hour)

	token, err := minter.MintAccessToken(tokenTestUser())
	require.NoError(t, err)

	result := verifier.Verify(token)
	assert.Equal(t, TokenExpired, result.State)
	assert.Nil(t, result.Claims)
}

func TestTokenManager_GarbageIsMalformed(t *testing.T) {
	tm := NewTokenManager("test-secret-test-secret-test-secret", 15*time.Minute, 24*time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		result := tm.Verify(token)
		assert.Equal(t, TokenMalformed, result.State, "token %q", token)
	}
}

func TestTokenManager_DecodeUnverified(t *testing.T) {
	tm := NewTokenManager("test-secret-test-secret-test-secret", 15*time.Minute, 24*time.Hour)

	token, err := tm.MintAccessToken(tokenTestUser())
	require.NoError(t, err)

	claims, err := NewTokenManager("different-secret-entirely", 15*time.Minute, 24*time.Hour).DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.Subject)
}
