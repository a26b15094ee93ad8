package services

import (
	"context"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc        func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetActiveFunc     func(ctx context.Context, id string, active bool) error
	DeleteFunc        func(ctx context.Context, id string) error
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

// MockOTPRepository implements OTPRepository for testing
type MockOTPRepository struct {
	CreateFunc          func(ctx context.Context, otp *models.EmailOTP) (*models.EmailOTP, error)
	FindOutstandingFunc func(ctx context.Context, email string, stage models.OTPStage) (*models.EmailOTP, error)
	FindByCodeFunc      func(ctx context.Context, email, code string, stage models.OTPStage) (*models.EmailOTP, error)
	MarkUsedFunc        func(ctx context.Context, id string) error
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *models.EmailOTP) (*models.EmailOTP, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, otp)
	}
	otp.ID = "otp123"
	otp.CreatedAt = time.Now()
	return otp, nil
}

func (m *MockOTPRepository) FindOutstanding(ctx context.Context, email string, stage models.OTPStage) (*models.EmailOTP, error) {
	if m.FindOutstandingFunc != nil {
		return m.FindOutstandingFunc(ctx, email, stage)
	}
	return nil, models.ErrNotFound
}

func (m *MockOTPRepository) FindByCode(ctx context.Context, email, code string, stage models.OTPStage) (*models.EmailOTP, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, email, code, stage)
	}
	return nil, models.ErrNotFound
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, id string) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id)
	}
	return nil
}

// MockLockoutLedger implements LockoutLedger for testing
type MockLockoutLedger struct {
	FindActiveFunc func(ctx context.Context, userID string, windowStart, windowEnd time.Time) (*models.Lockout, error)
	CreateFunc     func(ctx context.Context, userID string, windowStart time.Time) (*models.Lockout, error)

	Created []string
}

func (m *MockLockoutLedger) FindActive(ctx context.Context, userID string, windowStart, windowEnd time.Time) (*models.Lockout, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, userID, windowStart, windowEnd)
	}
	return nil, models.ErrNotFound
}

func (m *MockLockoutLedger) Create(ctx context.Context, userID string, windowStart time.Time) (*models.Lockout, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, windowStart)
	}
	m.Created = append(m.Created, userID)
	return &models.Lockout{ID: "lockout123", UserID: userID, CreatedAt: time.Now()}, nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendOTPEmailFunc func(ctx context.Context, firstName, email, otp, lang string) error

	SentOTPs []string
}

func (m *MockEmailService) SendOTPEmail(ctx context.Context, firstName, email, otp, lang string) error {
	if m.SendOTPEmailFunc != nil {
		return m.SendOTPEmailFunc(ctx, firstName, email, otp, lang)
	}
	m.SentOTPs = append(m.SentOTPs, otp)
	return nil
}

// MockSessionInvalidator implements SessionInvalidator for testing
type MockSessionInvalidator struct {
	DeleteByUserIDFunc func(ctx context.Context, userID string) (int64, error)
}

func (m *MockSessionInvalidator) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

// MockCounterClearer implements CounterClearer for testing
type MockCounterClearer struct {
	ClearCounterFunc func(ctx context.Context, email string) error

	Cleared []string
}

func (m *MockCounterClearer) ClearCounter(ctx context.Context, email string) error {
	if m.ClearCounterFunc != nil {
		return m.ClearCounterFunc(ctx, email)
	}
	m.Cleared = append(m.Cleared, email)
	return nil
}

// NewTestUser builds an active user with the given password hashed at the
// minimum bcrypt cost to keep tests fast.
func NewTestUser(id, email, password string, userType models.UserType) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		UserType:     userType,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}
