package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/backyardhq/accounts/internal/repositories"
)

// CleanupManager periodically removes expired OTP codes and lockout records
// that have aged out of the counting window.
type CleanupManager struct {
	otpRepo        *repositories.OTPRepository
	lockoutRepo    *repositories.LockoutRepository
	lockoutMaxAge  time.Duration
	logger         *slog.Logger
	interval       time.Duration
	stopCh         chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	otpRepo *repositories.OTPRepository,
	lockoutRepo *repositories.LockoutRepository,
	lockoutMaxAge time.Duration,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		otpRepo:       otpRepo,
		lockoutRepo:   lockoutRepo,
		lockoutMaxAge: lockoutMaxAge,
		logger:        logger,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	otps, err := cm.otpRepo.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to cleanup expired OTPs", slog.Any("error", err))
	} else if otps > 0 {
		cm.logger.Info("expired OTP cleanup completed", slog.Int64("rows_deleted", otps))
	}

	// Lockouts outside the counting window no longer block anyone; they are
	// kept for a grace period for audit purposes, then dropped.
	cutoff := time.Now().Add(-cm.lockoutMaxAge)
	lockouts, err := cm.lockoutRepo.DeleteOlderThan(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to cleanup stale lockouts", slog.Any("error", err))
	} else if lockouts > 0 {
		cm.logger.Info("stale lockout cleanup completed", slog.Int64("rows_deleted", lockouts))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
