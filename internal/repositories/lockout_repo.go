package repositories

import (
	"context"
	"time"

	"github.com/backyardhq/accounts/internal/database"
	"github.com/backyardhq/accounts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LockoutRepository is the durable ledger of block events. Records are
// append-only: no update path exists, deletion happens only through the
// retention cleanup.
type LockoutRepository struct {
	db *database.DB
}

func NewLockoutRepository(db *database.DB) *LockoutRepository {
	return &LockoutRepository{db: db}
}

// FindActive returns the most recent lockout for the user created inside
// [windowStart, windowEnd), or ErrNotFound.
func (r *LockoutRepository) FindActive(ctx context.Context, userID string, windowStart, windowEnd time.Time) (*models.Lockout, error) {
	query := `
		SELECT id, user_id, created_at FROM lockouts
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	var lockout models.Lockout
	err := r.db.Pool.QueryRow(ctx, query, userID, windowStart, windowEnd).
		Scan(&lockout.ID, &lockout.UserID, &lockout.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, database.MapPostgresError(err)
	}

	return &lockout, nil
}

// Create inserts a lockout unless one already exists for the user inside the
// window. The check and the insert run as a single statement, so two
// concurrent over-threshold requests cannot both insert.
func (r *LockoutRepository) Create(ctx context.Context, userID string, windowStart time.Time) (*models.Lockout, error) {
	query := `
		INSERT INTO lockouts (id, user_id, created_at)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM lockouts WHERE user_id = $2 AND created_at >= $4
		)
		RETURNING id, user_id, created_at
	`

	var lockout models.Lockout
	err := r.db.Pool.QueryRow(ctx, query, uuid.New().String(), userID, time.Now(), windowStart).
		Scan(&lockout.ID, &lockout.UserID, &lockout.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Another request already recorded the lockout for this window.
			return nil, models.ErrConflict
		}
		return nil, database.MapPostgresError(err)
	}

	return &lockout, nil
}

// DeleteOlderThan removes lockouts created before the cutoff.
func (r *LockoutRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM lockouts WHERE created_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
