package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Device is a remembered login device. A device is trusted until ExpiresAt.
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LastLogin time.Time `json:"last_login"`
	ExpiresAt time.Time `json:"expires_at"`
}
