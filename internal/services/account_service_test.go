package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	pkgauth "github.com/backyardhq/accounts/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountFixture(users UserRepository, otps OTPRepository, sessions SessionInvalidator, email EmailService) *AccountService {
	if otps == nil {
		otps = &MockOTPRepository{}
	}
	if sessions == nil {
		sessions = &MockSessionInvalidator{}
	}
	if email == nil {
		email = &MockEmailService{}
	}
	return NewAccountService(users, otps, sessions, email, 24*time.Hour, slog.Default())
}

func TestAccountService_SignUp_Success(t *testing.T) {
	var created *models.User
	users := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user123"
			created = user
			return user, nil
		},
	}
	email := &MockEmailService{}
	svc := newAccountFixture(users, nil, nil, email)

	user, err := svc.SignUp(context.Background(), SignUpInput{
		Email:       "New.Applicant@Example.com",
		Password:    "Valid#Pass1",
		FirstName:   "Nora",
		LastName:    "Hassan",
		PhoneNumber: "+971500000000",
	}, "en")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "new.applicant@example.com", user.Email)
	assert.Equal(t, models.UserTypeApplicant, user.UserType)
	assert.False(t, user.IsActive)
	assert.NoError(t, pkgauth.ComparePassword(user.PasswordHash, "Valid#Pass1"))
	assert.Len(t, email.SentOTPs, 1)
}

func TestAccountService_SignUp_EmailTaken(t *testing.T) {
	users := &MockUserRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newAccountFixture(users, nil, nil, nil)

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    "taken@example.com",
		Password: "Valid#Pass1",
	}, "en")

	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestAccountService_SignUp_PendingOTP(t *testing.T) {
	users := &MockUserRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	otps := &MockOTPRepository{
		FindOutstandingFunc: func(ctx context.Context, email string, stage models.OTPStage) (*models.EmailOTP, error) {
			return &models.EmailOTP{ID: "otp123", Email: email, Code: "1234", Stage: stage}, nil
		},
	}
	svc := newAccountFixture(users, otps, nil, nil)

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    "pending@example.com",
		Password: "Valid#Pass1",
	}, "en")

	assert.ErrorIs(t, err, models.ErrOTPAlreadySent)
}

func TestAccountService_ConfirmEmailOTP_ActivatesAccount(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "Valid#Pass1", models.UserTypeApplicant)
	user.IsActive = false

	activated := false
	users := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
		SetActiveFunc: func(ctx context.Context, id string, active bool) error {
			assert.Equal(t, "user123", id)
			activated = active
			return nil
		},
	}
	marked := ""
	otps := &MockOTPRepository{
		FindByCodeFunc: func(ctx context.Context, email, code string, stage models.OTPStage) (*models.EmailOTP, error) {
			assert.Equal(t, models.OTPStageSignUp, stage)
			return &models.EmailOTP{ID: "otp123", Email: email, Code: code, Stage: stage}, nil
		},
		MarkUsedFunc: func(ctx context.Context, id string) error {
			marked = id
			return nil
		},
	}
	svc := newAccountFixture(users, otps, nil, nil)

	err := svc.ConfirmEmailOTP(context.Background(), "user@example.com", "1234")

	require.NoError(t, err)
	assert.True(t, activated)
	assert.Equal(t, "otp123", marked)
}

func TestAccountService_ConfirmEmailOTP_InvalidCode(t *testing.T) {
	svc := newAccountFixture(&MockUserRepository{}, &MockOTPRepository{}, nil, nil)

	err := svc.ConfirmEmailOTP(context.Background(), "user@example.com", "0000")

	assert.ErrorIs(t, err, models.ErrOTPNotFound)
}

func TestAccountService_UpdateProfile_PartialUpdate(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "Valid#Pass1", models.UserTypeApplicant)
	user.FirstName = "Old"
	user.PhoneNumber = "+971500000000"

	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		UpdateFunc: func(ctx context.Context, id string, u *models.User) (*models.User, error) {
			return u, nil
		},
	}
	svc := newAccountFixture(users, nil, nil, nil)

	gender := models.GenderFemale
	updated, err := svc.UpdateProfile(context.Background(), "user123", ProfileUpdateInput{
		FirstName: "Nora",
		Gender:    &gender,
	})

	require.NoError(t, err)
	assert.Equal(t, "Nora", updated.FirstName)
	// Untouched fields keep their values.
	assert.Equal(t, "+971500000000", updated.PhoneNumber)
	assert.Equal(t, &gender, updated.Gender)
	assert.True(t, updated.IsProfileCompleted)
}

func TestAccountService_DeleteAccount_InvalidatesSessions(t *testing.T) {
	deletedUser := ""
	users := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			deletedUser = id
			return nil
		},
	}
	invalidated := ""
	sessions := &MockSessionInvalidator{
		DeleteByUserIDFunc: func(ctx context.Context, userID string) (int64, error) {
			invalidated = userID
			return 2, nil
		},
	}
	svc := newAccountFixture(users, nil, sessions, nil)

	err := svc.DeleteAccount(context.Background(), "user123")

	require.NoError(t, err)
	assert.Equal(t, "user123", deletedUser)
	assert.Equal(t, "user123", invalidated)
}

func TestAccountService_DeleteAccount_NotFound(t *testing.T) {
	users := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	svc := newAccountFixture(users, nil, nil, nil)

	err := svc.DeleteAccount(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
}
