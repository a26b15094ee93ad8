package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account / credential errors
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrAccountInactive    = errors.New("account is not activated")
	ErrEmailTaken         = errors.New("email already used")
	ErrOTPNotFound        = errors.New("otp not found for provided email")
	ErrOTPAlreadySent     = errors.New("otp already sent")
	ErrNotStaff           = errors.New("admin role does not exist with this email")
)

// LockoutMessage is the fixed user-visible text returned whenever the
// failed-login guard blocks a request.
const LockoutMessage = "You have exceeded the maximum allowed attempts, your account is blocked temporarily, try again after some time"
