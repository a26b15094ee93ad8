package repositories

import (
	"context"

	"github.com/backyardhq/accounts/internal/database"
)

// SessionRepository tracks server-side sessions. The core only needs the
// deletion hook: when an identity is removed, every session bound to it must
// be invalidated.
type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// DeleteByUserID invalidates all sessions whose subject matches the user.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM sessions WHERE user_id = $1`

	result, err := r.db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
