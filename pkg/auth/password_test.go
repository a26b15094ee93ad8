package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Sup3r@pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NoError(t, ComparePassword(hash, "Sup3r@pass"))
	assert.Error(t, ComparePassword(hash, "wrong-pass"))
}

func TestHashPassword_EmptyRejected(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid", "Abcdef1@", true},
		{"valid with symbols", "Go#Lang99", true},
		{"too short", "Ab1@xyz", false},
		{"too long", "Abcdefgh1@abcdefg", false},
		{"no uppercase", "abcdef1@", false},
		{"no lowercase", "ABCDEF1@", false},
		{"no special", "Abcdefg1", false},
		{"three repeats allowed", "Baaa@cde", true},
		{"four repeats rejected", "Baaaa@cd", false},
		{"mixed case is not a run", "Aaaa@cde", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestValidatePasswordForEmail(t *testing.T) {
	assert.False(t, ValidatePasswordForEmail("User@Mail1", "user@mail1"))
	assert.True(t, ValidatePasswordForEmail("Abcdef1@", "user@example.com"))
}
