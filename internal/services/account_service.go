package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	pkgauth "github.com/backyardhq/accounts/pkg/auth"
)

// SessionInvalidator removes every session bound to an identity, executed as
// a cleanup hook when the identity is deleted.
type SessionInvalidator interface {
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// SignUpInput carries the validated registration fields.
type SignUpInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// ProfileUpdateInput carries the editable profile fields. Email and user
// type are read-only.
type ProfileUpdateInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Gender      *int
	DateOfBirth *time.Time
}

// AccountService handles registration, activation and profile management.
type AccountService struct {
	users     UserRepository
	otps      OTPRepository
	sessions  SessionInvalidator
	email     EmailService
	otpExpiry time.Duration
	logger    *slog.Logger
}

func NewAccountService(
	users UserRepository,
	otps OTPRepository,
	sessions SessionInvalidator,
	email EmailService,
	otpExpiry time.Duration,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		otps:      otps,
		sessions:  sessions,
		email:     email,
		otpExpiry: otpExpiry,
		logger:    logger,
	}
}

// SignUp registers a new applicant. The account stays inactive until the
// emailed sign-up OTP is confirmed.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput, lang string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign up email check: %w", err)
	}
	if taken {
		// An unconsumed sign-up OTP means the account just needs confirming.
		if _, err := s.otps.FindOutstanding(ctx, email, models.OTPStageSignUp); err == nil {
			return nil, models.ErrOTPAlreadySent
		}
		return nil, models.ErrEmailTaken
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		UserType:     models.UserTypeApplicant,
		IsActive:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up user create: %w", err)
	}

	if err := s.issueSignUpOTP(ctx, user, lang); err != nil {
		return nil, err
	}

	s.logger.Info("applicant registered", slog.String("user_id", user.ID))
	return user, nil
}

// ConfirmEmailOTP consumes a sign-up OTP and activates the account.
func (s *AccountService) ConfirmEmailOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	otp, err := s.otps.FindByCode(ctx, email, code, models.OTPStageSignUp)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrOTPNotFound
		}
		return fmt.Errorf("confirm otp lookup: %w", err)
	}

	if err := s.otps.MarkUsed(ctx, otp.ID); err != nil {
		return fmt.Errorf("confirm otp consume: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("confirm otp user lookup: %w", err)
	}

	if err := s.users.SetActive(ctx, user.ID, true); err != nil {
		return fmt.Errorf("confirm otp activate: %w", err)
	}

	s.logger.Info("account activated", slog.String("user_id", user.ID))
	return nil
}

// GetProfile returns the user's profile.
func (s *AccountService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("profile lookup: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. Any successful update
// marks the profile as completed.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, input ProfileUpdateInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("profile update lookup: %w", err)
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.Gender != nil {
		user.Gender = input.Gender
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	user.IsProfileCompleted = true

	updated, err := s.users.Update(ctx, id, user)
	if err != nil {
		return nil, fmt.Errorf("profile update: %w", err)
	}

	return updated, nil
}

// DeleteAccount removes the identity and invalidates every session bound to
// it. Lockout records cascade with the user row.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	invalidated, err := s.sessions.DeleteByUserID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete account sessions: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account deleted",
		slog.String("user_id", id),
		slog.Int64("sessions_invalidated", invalidated))
	return nil
}

func (s *AccountService) issueSignUpOTP(ctx context.Context, user *models.User, lang string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	otp, err := s.otps.Create(ctx, &models.EmailOTP{
		Email:     user.Email,
		Code:      code,
		Stage:     models.OTPStageSignUp,
		ExpiresAt: time.Now().Add(s.otpExpiry),
	})
	if err != nil {
		return fmt.Errorf("sign up otp create: %w", err)
	}

	return s.email.SendOTPEmail(ctx, user.FirstName, user.Email, otp.Code, lang)
}
