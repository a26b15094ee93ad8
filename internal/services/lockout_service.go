package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	"github.com/backyardhq/accounts/internal/store"
	pkgauth "github.com/backyardhq/accounts/pkg/auth"
	pkglogger "github.com/backyardhq/accounts/pkg/logger"
)

const counterKeyPrefix = "failed_login_attempts:"

// LockoutLedger is the durable record of block events.
type LockoutLedger interface {
	FindActive(ctx context.Context, userID string, windowStart, windowEnd time.Time) (*models.Lockout, error)
	Create(ctx context.Context, userID string, windowStart time.Time) (*models.Lockout, error)
}

// UserFinder resolves identities for the guard.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// LockoutConfig holds the failed-login policy parameters.
type LockoutConfig struct {
	MaxFailedAttempts int
	Window            time.Duration
}

// LockoutService enforces the rolling failed-login policy. Counting is
// scoped to applicants; the over-threshold rejection on a correct password
// applies to every role.
type LockoutService struct {
	counters    store.CounterStore
	ledger      LockoutLedger
	users       UserFinder
	config      LockoutConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewLockoutService(
	counters store.CounterStore,
	ledger LockoutLedger,
	users UserFinder,
	config LockoutConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *LockoutService {
	return &LockoutService{
		counters:    counters,
		ledger:      ledger,
		users:       users,
		config:      config,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// CounterKey derives the counter key for an email.
func CounterKey(email string) string {
	return counterKeyPrefix + strings.ToLower(email)
}

// CheckAttempt inspects a login attempt before the authentication handler
// runs. It returns blocked=true when the request must be rejected with the
// lockout response; the caller writes nothing on the allow path.
func (s *LockoutService) CheckAttempt(ctx context.Context, email, password string) (blocked bool, err error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Unknown email: fall through to normal incorrect-credentials handling.
			return false, nil
		}
		return false, fmt.Errorf("lockout guard user lookup: %w", err)
	}

	key := CounterKey(email)
	passwordMatches := pkgauth.ComparePassword(user.PasswordHash, password) == nil

	if !passwordMatches {
		if user.UserType != models.UserTypeApplicant {
			// Only applicants accumulate failed attempts.
			return false, nil
		}
		return s.countFailure(ctx, key, user)
	}

	// Correct password, but an identity already over threshold stays blocked
	// until the window expires. This check is role-unscoped.
	count, err := s.counters.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("lockout guard counter read: %w", err)
	}
	if count >= s.config.MaxFailedAttempts {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			UserID:        user.ID,
			Email:         user.Email,
			FailureReason: "lockout_active",
			Success:       false,
		})
		return true, nil
	}

	return false, nil
}

// countFailure applies one failed attempt: first failure creates the counter
// and anchors the window, later failures increment without refreshing the
// TTL, and crossing the threshold records the lockout.
func (s *LockoutService) countFailure(ctx context.Context, key string, user *models.User) (bool, error) {
	count, err := s.counters.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("lockout guard counter read: %w", err)
	}

	if count >= s.config.MaxFailedAttempts {
		if err := s.recordLockout(ctx, user); err != nil {
			return false, err
		}
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			UserID:        user.ID,
			Email:         user.Email,
			FailureReason: "max_attempts_exceeded",
			Success:       false,
		})
		return true, nil
	}

	if count == 0 {
		if err := s.counters.SetWithTTL(ctx, key, 1, s.config.Window); err != nil {
			return false, fmt.Errorf("lockout guard counter create: %w", err)
		}
		return false, nil
	}

	if _, err := s.counters.Increment(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Counter expired between the read and the increment: start a
			// fresh window.
			if err := s.counters.SetWithTTL(ctx, key, 1, s.config.Window); err != nil {
				return false, fmt.Errorf("lockout guard counter create: %w", err)
			}
			return false, nil
		}
		return false, fmt.Errorf("lockout guard counter increment: %w", err)
	}

	return false, nil
}

// recordLockout inserts at most one ledger row per user per window.
func (s *LockoutService) recordLockout(ctx context.Context, user *models.User) error {
	now := time.Now()
	windowStart := now.Add(-s.config.Window)

	existing, err := s.ledger.FindActive(ctx, user.ID, windowStart, now)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("lockout ledger lookup: %w", err)
	}
	if existing != nil {
		return nil
	}

	if _, err := s.ledger.Create(ctx, user.ID, windowStart); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// A concurrent request won the insert; the block stands either way.
			return nil
		}
		return fmt.Errorf("lockout ledger insert: %w", err)
	}

	s.logger.Warn("user locked out",
		slog.String("user_id", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))

	return nil
}

// ClearCounter resets the failed-attempt counter, called on successful login.
func (s *LockoutService) ClearCounter(ctx context.Context, email string) error {
	if err := s.counters.Delete(ctx, CounterKey(email)); err != nil {
		return fmt.Errorf("lockout guard counter clear: %w", err)
	}
	return nil
}
