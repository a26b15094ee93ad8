package models

import (
	"time"
)

// UserType enumerates the platform roles. The numeric values are part of the
// token claims contract with the frontend and must not be reordered.
type UserType int

const (
	UserTypeAdmin         UserType = 1
	UserTypeApplicant     UserType = 2
	UserTypeCRTSupervisor UserType = 3
	UserTypeCRTStaff      UserType = 4
	UserTypeFilterer      UserType = 5
	UserTypeEvaluator     UserType = 6
	UserTypeJudge         UserType = 7
	UserTypeMoCStaff      UserType = 8
	UserTypePrioEvaluator UserType = 9
	UserTypePrioJudge     UserType = 10
)

// StaffUserTypes are the roles allowed through the admin OTP sign-in flow.
// Applicants authenticate with password only.
var StaffUserTypes = []UserType{
	UserTypeAdmin,
	UserTypeCRTSupervisor,
	UserTypeCRTStaff,
	UserTypeFilterer,
	UserTypeEvaluator,
	UserTypeJudge,
	UserTypeMoCStaff,
	UserTypePrioEvaluator,
	UserTypePrioJudge,
}

// IsStaff reports whether the user type may use the admin OTP sign-in flow.
func (t UserType) IsStaff() bool {
	for _, staff := range StaffUserTypes {
		if t == staff {
			return true
		}
	}
	return false
}

const (
	GenderMale   = 1
	GenderFemale = 2
)

type User struct {
	ID                 string
	Email              string // stored lower-cased, unique
	PasswordHash       string
	FirstName          string
	LastName           string
	PhoneNumber        string
	UserType           UserType
	Gender             *int
	DateOfBirth        *time.Time
	IsActive           bool // false until the sign-up OTP is confirmed
	IsProfileCompleted bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
