package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/models"
	pkgauth "github.com/backyardhq/accounts/pkg/auth"
	pkglogger "github.com/backyardhq/accounts/pkg/logger"
)

// UserRepository defines the user-record store consumed by the services.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// OTPRepository defines the email OTP store.
type OTPRepository interface {
	Create(ctx context.Context, otp *models.EmailOTP) (*models.EmailOTP, error)
	FindOutstanding(ctx context.Context, email string, stage models.OTPStage) (*models.EmailOTP, error)
	FindByCode(ctx context.Context, email, code string, stage models.OTPStage) (*models.EmailOTP, error)
	MarkUsed(ctx context.Context, id string) error
}

// CounterClearer resets a failed-attempt counter after a successful login.
type CounterClearer interface {
	ClearCounter(ctx context.Context, email string) error
}

// TokenPair is the minted credential set returned by authentication flows.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenDetails is the decoded-claims payload returned by the token-details
// endpoint, the claims plus the profile-completion flag.
type TokenDetails struct {
	UserID             string          `json:"user_id"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	Email              string          `json:"email"`
	UserType           models.UserType `json:"user_type"`
	IsProfileCompleted bool            `json:"is_profile_completed"`
}

// AuthService handles login, admin OTP sign-in and token introspection.
type AuthService struct {
	users       UserRepository
	otps        OTPRepository
	counters    CounterClearer
	tm          *auth.TokenManager
	timing      *auth.TimingDelay
	email       EmailService
	otpExpiry   time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(
	users UserRepository,
	otps OTPRepository,
	counters CounterClearer,
	tm *auth.TokenManager,
	timing *auth.TimingDelay,
	email EmailService,
	otpExpiry time.Duration,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		otps:        otps,
		counters:    counters,
		tm:          tm,
		timing:      timing,
		email:       email,
		otpExpiry:   otpExpiry,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Login authenticates a user with email and password and mints a token pair.
// A successful login clears the failed-attempt counter for the email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	start := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.timing.WaitFrom(start, false)
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Email:         email,
				FailureReason: "unknown_email",
				Success:       false,
			})
			return nil, nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	if !user.IsActive {
		s.timing.WaitFrom(start, false)
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "account_inactive",
			Success:       false,
		})
		return nil, nil, models.ErrAccountInactive
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.timing.WaitFrom(start, false)
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, nil, models.ErrInvalidCredentials
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, nil, err
	}

	// Best effort: a failed clear must not fail the login.
	if err := s.counters.ClearCounter(ctx, email); err != nil {
		s.logger.Warn("failed to clear attempt counter", slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return pair, user, nil
}

// IssueAdminOTP authenticates a staff user by password and emails the
// admin-login OTP. An outstanding code is re-sent rather than replaced.
func (s *AuthService) IssueAdminOTP(ctx context.Context, email, password, lang string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("admin otp user lookup: %w", err)
	}

	if !user.UserType.IsStaff() {
		return nil, models.ErrNotStaff
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	otp, err := s.otps.FindOutstanding(ctx, email, models.OTPStageAdminLogin)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("admin otp lookup: %w", err)
		}
		code, genErr := generateOTP()
		if genErr != nil {
			return nil, genErr
		}
		otp, err = s.otps.Create(ctx, &models.EmailOTP{
			Email:     email,
			Code:      code,
			Stage:     models.OTPStageAdminLogin,
			ExpiresAt: time.Now().Add(s.otpExpiry),
		})
		if err != nil {
			return nil, fmt.Errorf("admin otp create: %w", err)
		}
	}

	if err := s.email.SendOTPEmail(ctx, user.FirstName, user.Email, otp.Code, lang); err != nil {
		return nil, err
	}

	s.logger.Info("admin OTP issued", slog.String("user_id", user.ID))
	return user, nil
}

// VerifyAdminOTP consumes an admin-login OTP and mints the token pair.
func (s *AuthService) VerifyAdminOTP(ctx context.Context, email, code string) (*TokenPair, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrNotStaff
		}
		return nil, nil, fmt.Errorf("admin otp verify user lookup: %w", err)
	}
	if !user.UserType.IsStaff() {
		return nil, nil, models.ErrNotStaff
	}

	otp, err := s.otps.FindByCode(ctx, email, code, models.OTPStageAdminLogin)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrOTPNotFound
		}
		return nil, nil, fmt.Errorf("admin otp verify lookup: %w", err)
	}

	if err := s.otps.MarkUsed(ctx, otp.ID); err != nil {
		return nil, nil, fmt.Errorf("admin otp consume: %w", err)
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "admin_otp_login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return pair, user, nil
}

// TokenDetails resolves the current user for a set of verified claims and
// augments them with the profile-completion flag.
func (s *AuthService) TokenDetails(ctx context.Context, claims *models.AccessClaims) (*TokenDetails, error) {
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("token details user lookup: %w", err)
	}

	return &TokenDetails{
		UserID:             user.ID,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Email:              user.Email,
		UserType:           user.UserType,
		IsProfileCompleted: user.IsProfileCompleted,
	}, nil
}

func (s *AuthService) mintPair(user *models.User) (*TokenPair, error) {
	access, err := s.tm.MintAccessToken(user)
	if err != nil {
		s.logger.Error("failed to mint access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refresh, err := s.tm.MintRefreshToken(user)
	if err != nil {
		s.logger.Error("failed to mint refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}
