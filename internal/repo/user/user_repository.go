package user

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

// UpdateFields carries the optional field updates for Update. Nil pointers
// leave the column untouched. SetTelegram distinguishes "clear telegram_id"
// from "keep telegram_id".
type UpdateFields struct {
	Name         *string
	Email        *string
	PasswordHash []byte
	TelegramID   *string
	SetTelegram  bool
}

// Repository defines the interface for user data persistence.
type Repository interface {
	// Create adds a new user together with its role assignments.
	// Returns ErrEmailAlreadyExists if the email is already taken.
	Create(ctx context.Context, name, email string, passwordHash []byte, telegramID *string, roles []string) (*domain.User, error)

	// FindByID retrieves a user by primary key, with roles and permissions
	// resolved. Returns ErrUserNotFound if no such user exists.
	FindByID(ctx context.Context, id int64) (*domain.User, error)

	// FindByEmail retrieves a user by email, with roles and permissions
	// resolved. Returns ErrUserNotFound if no such user exists.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns a page of users ordered by id.
	List(ctx context.Context, limit, offset int64) ([]*domain.User, error)

	// Update applies the given field updates. A non-nil roles slice replaces
	// the user's role assignments; nil keeps them.
	// Returns ErrUserNotFound if no such user exists.
	Update(ctx context.Context, id int64, fields UpdateFields, roles []string) (*domain.User, error)

	// EmailExists reports whether a user other than excludeID already uses
	// the given email. Pass excludeID 0 to check all users.
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)

	// TelegramID returns the telegram chat id of the given user, or nil if
	// the user has none configured.
	TelegramID(ctx context.Context, userID int64) (*string, error)
}
