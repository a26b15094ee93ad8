package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpLength = 4

// generateOTP produces a random numeric code.
func generateOTP() (string, error) {
	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
