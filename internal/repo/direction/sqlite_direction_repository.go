package direction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/db"
)

// SQLiteDirectionRepository implements Repository on the shared SQLite store.
type SQLiteDirectionRepository struct {
	db  *db.DB
	log logging.Logger
}

var _ Repository = (*SQLiteDirectionRepository)(nil)

// NewSQLiteDirectionRepository creates a new SQLiteDirectionRepository.
func NewSQLiteDirectionRepository(store *db.DB) *SQLiteDirectionRepository {
	return &SQLiteDirectionRepository{
		db:  store,
		log: logging.GetLogger("repo.direction.sqlite_direction_repository"),
	}
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteDirectionRepository) Create(ctx context.Context, name string) (*domain.Direction, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx, "INSERT INTO directions (name) VALUES (?)", name)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrDirectionExists, err)
		}

		return nil, fmt.Errorf("insert direction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert direction: %w", err)
	}

	return r.Find(ctx, id)
}

// Find implements Repository.Find using SQLite.
func (r *SQLiteDirectionRepository) Find(ctx context.Context, id int64) (*domain.Direction, error) {
	var direction domain.Direction

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT id, name FROM directions WHERE id = ?", id,
	).Scan(&direction.ID, &direction.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrDirectionNotFound, err)
		}

		return nil, fmt.Errorf("query direction: %w", err)
	}

	return &direction, nil
}

// List implements Repository.List using SQLite.
func (r *SQLiteDirectionRepository) List(ctx context.Context) ([]*domain.Direction, error) {
	rows, err := r.db.SQL.QueryContext(ctx, "SELECT id, name FROM directions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query directions: %w", err)
	}
	defer rows.Close()

	directions := []*domain.Direction{}

	for rows.Next() {
		var direction domain.Direction
		if err := rows.Scan(&direction.ID, &direction.Name); err != nil {
			return nil, fmt.Errorf("scan direction: %w", err)
		}

		directions = append(directions, &direction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate directions: %w", err)
	}

	return directions, nil
}

// Update implements Repository.Update using SQLite.
func (r *SQLiteDirectionRepository) Update(ctx context.Context, id int64, name string) (*domain.Direction, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx, "UPDATE directions SET name = ? WHERE id = ?", name, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrDirectionExists, err)
		}

		return nil, fmt.Errorf("update direction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update direction: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("update direction: %w", domain.ErrDirectionNotFound)
	}

	return r.Find(ctx, id)
}

// Delete implements Repository.Delete using SQLite.
func (r *SQLiteDirectionRepository) Delete(ctx context.Context, id int64) error {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx, "DELETE FROM directions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete direction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete direction: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete direction: %w", domain.ErrDirectionNotFound)
	}

	return nil
}
