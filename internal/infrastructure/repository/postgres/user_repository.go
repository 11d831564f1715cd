package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, created_at
FROM users
WHERE email = $1
`, email)

	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUserNotFound, "get user", fmt.Errorf("email %s", email))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, name, email, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5)
`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpsertDevice(ctx context.Context, userID string, device domain.Device) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO devices (id, user_id, last_login, expires_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id, id) DO UPDATE SET last_login = $3, expires_at = $4
`, device.ID, userID, device.LastLogin, device.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

// VerifyDevice reports whether the device is still within its trust window
// for the given account. An unknown user is an error; an unknown or expired
// device is simply not trusted.
func (r *UserRepository) VerifyDevice(ctx context.Context, email, deviceID string, now time.Time) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT d.expires_at
FROM devices d
JOIN users u ON u.id = d.user_id
WHERE u.email = $1 AND d.id = $2
`, email, deviceID)

	var expiresAt time.Time
	err := row.Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, userErr := r.GetByEmail(ctx, email); userErr != nil {
				return false, userErr
			}
			return false, nil
		}
		return false, fmt.Errorf("scan device: %w", err)
	}
	return now.Before(expiresAt), nil
}
