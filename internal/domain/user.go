package domain

import "errors"

var (
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists is returned when creating or updating a user with a taken email.
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// User represents an account in the system. Timestamps are RFC 3339 strings
// in UTC, matching the wire format and the storage format.
type User struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash []byte   `json:"-"`
	TelegramID   *string  `json:"telegram_id"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}
