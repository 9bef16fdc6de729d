package role

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

// Repository defines the interface for role data persistence.
type Repository interface {
	// Create adds a new role. Returns db.ErrDuplicate wrapped when the name
	// is already taken.
	Create(ctx context.Context, name, description string) (*domain.Role, error)

	// Find retrieves a role by primary key.
	// Returns ErrRoleNotFound if no such role exists.
	Find(ctx context.Context, id int64) (*domain.Role, error)

	// List returns all roles ordered by id.
	List(ctx context.Context) ([]*domain.Role, error)

	// Update renames a role and replaces its description.
	// Returns ErrRoleNotFound if no such role exists.
	Update(ctx context.Context, id int64, name, description string) (*domain.Role, error)

	// Delete removes a role and its user assignments.
	// Returns ErrRoleNotFound if no such role exists.
	Delete(ctx context.Context, id int64) error

	// Names returns the set of known role names.
	Names(ctx context.Context) ([]string, error)
}
