package domain

import "errors"

var (
	// ErrDirectionNotFound is returned when looking up a non-existent direction.
	ErrDirectionNotFound = errors.New("direction not found")
	// ErrDirectionExists is returned when creating or renaming a direction to a taken name.
	ErrDirectionExists = errors.New("direction already exists")
)

// Direction is a task category.
type Direction struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
