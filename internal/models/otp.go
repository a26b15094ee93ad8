package models

import "time"

// OTPStage distinguishes the two email OTP flows.
type OTPStage int

const (
	OTPStageSignUp     OTPStage = 1
	OTPStageAdminLogin OTPStage = 2
)

// EmailOTP is a 4-digit code mailed to a user. Used is false while the code
// is outstanding and flips to true exactly once when it is consumed.
type EmailOTP struct {
	ID        string
	Email     string // stored lower-cased
	Code      string
	Stage     OTPStage
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}
