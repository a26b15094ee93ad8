package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPasswordLen = 8
	MaxPasswordLen = 15
	// A character may repeat at most this many times consecutively.
	maxConsecutiveRepeats = 3
)

// PasswordPolicyMessage is shown whenever a password fails the policy check.
const PasswordPolicyMessage = "Length must be between 8 to 15 characters, should not contain more than 3 " +
	"repeated characters consecutively, and at least contains one uppercase, lowercase and special characters."

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// ComparePassword checks a plaintext password against a bcrypt hash.
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword enforces the platform password policy: 8-15 characters,
// no character repeated more than three times in a row, and at least one
// uppercase, one lowercase and one special character.
func ValidatePassword(password string) bool {
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return false
	}

	var hasUpper, hasLower, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasSpecial {
		return false
	}

	runes := []rune(password)
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run > maxConsecutiveRepeats {
				return false
			}
		} else {
			run = 1
		}
	}

	return true
}

// ValidatePasswordForEmail additionally rejects a password equal to the
// account email.
func ValidatePasswordForEmail(password, email string) bool {
	if strings.EqualFold(password, email) {
		return false
	}
	return ValidatePassword(password)
}
