package direction

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

// Repository defines the interface for direction data persistence.
type Repository interface {
	// Create adds a new direction.
	// Returns ErrDirectionExists if the name is already taken.
	Create(ctx context.Context, name string) (*domain.Direction, error)

	// Find retrieves a direction by primary key.
	// Returns ErrDirectionNotFound if no such direction exists.
	Find(ctx context.Context, id int64) (*domain.Direction, error)

	// List returns all directions ordered by id.
	List(ctx context.Context) ([]*domain.Direction, error)

	// Update renames a direction.
	// Returns ErrDirectionNotFound if no such direction exists and
	// ErrDirectionExists if the new name is taken.
	Update(ctx context.Context, id int64, name string) (*domain.Direction, error)

	// Delete removes a direction.
	// Returns ErrDirectionNotFound if no such direction exists.
	Delete(ctx context.Context, id int64) error
}
