package permission

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

// Repository defines the interface for permission data persistence.
type Repository interface {
	// Create adds a new permission, optionally bound to a user or a role.
	// Returns db.ErrDuplicate wrapped when the name is already taken.
	Create(ctx context.Context, name string, userID, roleID *int64) (*domain.Permission, error)

	// Find retrieves a permission by primary key.
	// Returns ErrPermissionNotFound if no such permission exists.
	Find(ctx context.Context, id int64) (*domain.Permission, error)

	// List returns all permissions ordered by id.
	List(ctx context.Context) ([]*domain.Permission, error)

	// Update replaces a permission's name and bindings.
	// Returns ErrPermissionNotFound if no such permission exists.
	Update(ctx context.Context, id int64, name string, userID, roleID *int64) (*domain.Permission, error)

	// Delete removes a permission.
	// Returns ErrPermissionNotFound if no such permission exists.
	Delete(ctx context.Context, id int64) error
}
