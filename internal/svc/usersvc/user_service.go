// Package usersvc implements user management: listing, creation and updates,
// including role assignment and the telegram chat binding used for personal
// notifications.
package usersvc

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/role"
	"github.com/limaudio/taskman/internal/repo/user"
	"github.com/limaudio/taskman/internal/svc/authsvc"
)

// CreateParams carries the input for Create.
type CreateParams struct {
	Name       string
	Email      string
	Password   string
	TelegramID *string
	Roles      []string
}

// UpdateParams carries the input for Update. Nil pointers leave the field
// untouched; SetTelegram distinguishes clearing telegram_id from keeping it.
type UpdateParams struct {
	Name        *string
	Email       *string
	Password    *string
	TelegramID  *string
	SetTelegram bool
	Roles       []string
	SetRoles    bool
}

// UserService implements user management on top of the user and role
// repositories.
type UserService struct {
	users user.Repository
	roles role.Repository
	log   logging.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users user.Repository, roles role.Repository) *UserService {
	return &UserService{
		users: users,
		roles: roles,
		log:   logging.GetLogger("svc.usersvc.user_service"),
	}
}

// Create adds a new user. The email is normalized to lower case and unknown
// role names are dropped from the assignment.
func (us *UserService) Create(ctx context.Context, params CreateParams) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	hash, err := authsvc.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles, err := us.knownRoles(ctx, params.Roles)
	if err != nil {
		return nil, err
	}

	usr, err := us.users.Create(ctx, strings.TrimSpace(params.Name), email, hash, params.TelegramID, roles)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return usr, nil
}

// Get retrieves a user by id.
func (us *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	usr, err := us.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	return usr, nil
}

// List returns a page of users.
func (us *UserService) List(ctx context.Context, limit, offset int64) ([]*domain.User, error) {
	users, err := us.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Update applies a partial update to a user.
func (us *UserService) Update(ctx context.Context, id int64, params UpdateParams) (*domain.User, error) {
	fields := user.UpdateFields{
		Name:        params.Name,
		TelegramID:  params.TelegramID,
		SetTelegram: params.SetTelegram,
	}

	if params.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*params.Email))
		fields.Email = &email
	}

	if params.Password != nil {
		hash, err := authsvc.HashPassword(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		fields.PasswordHash = hash
	}

	var roles []string

	if params.SetRoles {
		var err error

		roles, err = us.knownRoles(ctx, params.Roles)
		if err != nil {
			return nil, err
		}

		if roles == nil {
			roles = []string{}
		}
	}

	usr, err := us.users.Update(ctx, id, fields, roles)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return usr, nil
}

// EmailExists reports whether another user already uses the given email.
func (us *UserService) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return us.users.EmailExists(ctx, strings.ToLower(strings.TrimSpace(email)), excludeID)
}

// knownRoles keeps only role names that exist in the roles table, preserving
// request order.
func (us *UserService) knownRoles(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	known, err := us.roles.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list role names: %w", err)
	}

	kept := []string{}

	for _, name := range requested {
		if slices.Contains(known, name) && !slices.Contains(kept, name) {
			kept = append(kept, name)
		}
	}

	return kept, nil
}
