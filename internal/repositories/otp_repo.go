package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/backyardhq/accounts/internal/database"
	"github.com/backyardhq/accounts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OTPRepository struct {
	db *database.DB
}

func NewOTPRepository(db *database.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.EmailOTP) (*models.EmailOTP, error) {
	otp.ID = uuid.New().String()
	otp.Email = strings.ToLower(otp.Email)
	otp.CreatedAt = time.Now()

	query := `
		INSERT INTO email_otps (id, email, code, stage, used, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		otp.ID, otp.Email, otp.Code, otp.Stage, otp.Used, otp.CreatedAt, otp.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return otp, nil
}

// FindOutstanding returns the newest unconsumed, unexpired OTP for the email
// and stage, or ErrNotFound.
func (r *OTPRepository) FindOutstanding(ctx context.Context, email string, stage models.OTPStage) (*models.EmailOTP, error) {
	query := `
		SELECT id, email, code, stage, used, created_at, expires_at FROM email_otps
		WHERE email = $1 AND stage = $2 AND used = FALSE AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanOTP(r.db.Pool.QueryRow(ctx, query, strings.ToLower(email), stage, time.Now()))
}

// FindByCode returns the matching unconsumed OTP for the email, code and
// stage, or ErrNotFound.
func (r *OTPRepository) FindByCode(ctx context.Context, email, code string, stage models.OTPStage) (*models.EmailOTP, error) {
	query := `
		SELECT id, email, code, stage, used, created_at, expires_at FROM email_otps
		WHERE email = $1 AND code = $2 AND stage = $3 AND used = FALSE AND expires_at > $4
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanOTP(r.db.Pool.QueryRow(ctx, query, strings.ToLower(email), code, stage, time.Now()))
}

// MarkUsed consumes an OTP. A consumed OTP can never validate again.
func (r *OTPRepository) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE email_otps SET used = TRUE WHERE id = $1 AND used = FALSE`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteExpired removes consumed and expired rows.
func (r *OTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM email_otps WHERE used = TRUE OR expires_at <= $1`

	result, err := r.db.Pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

func (r *OTPRepository) scanOTP(row pgx.Row) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := row.Scan(&otp.ID, &otp.Email, &otp.Code, &otp.Stage, &otp.Used, &otp.CreatedAt, &otp.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, database.MapPostgresError(err)
	}
	return &otp, nil
}
