package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/backyardhq/accounts/internal/database"
	"github.com/backyardhq/accounts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner interface for scanning user rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, email, password_hash, first_name, last_name, phone_number,
	user_type, gender, date_of_birth, is_active, is_profile_completed, created_at, updated_at`

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.UserType, &user.Gender, &user.DateOfBirth,
		&user.IsActive, &user.IsProfileCompleted, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByEmail looks a user up by email. Emails are stored lower-cased, so the
// lookup normalizes too — the one normalization rule, applied everywhere.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	user.Email = strings.ToLower(user.Email)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.UserType == 0 {
		user.UserType = models.UserTypeApplicant
	}

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone_number,
			user_type, gender, date_of_birth, is_active, is_profile_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.UserType, user.Gender, user.DateOfBirth,
		user.IsActive, user.IsProfileCompleted, user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET first_name = $1, last_name = $2, phone_number = $3, gender = $4,
			date_of_birth = $5, is_active = $6, is_profile_completed = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.FirstName, user.LastName, user.PhoneNumber, user.Gender,
		user.DateOfBirth, user.IsActive, user.IsProfileCompleted, user.UpdatedAt, id,
	))
}

// SetActive flips the activation flag, used when a sign-up OTP is confirmed.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, active, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the user row together with any sessions still bound to it.
// The sessions table carries no foreign key, so both deletes run in one
// transaction to avoid orphaned rows.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// ExistsByEmail reports whether any user owns the (normalized) email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, strings.ToLower(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}
