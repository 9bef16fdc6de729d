package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/db"
)

// SQLiteRoleRepository implements Repository on the shared SQLite store.
type SQLiteRoleRepository struct {
	db  *db.DB
	log logging.Logger
}

var _ Repository = (*SQLiteRoleRepository)(nil)

// NewSQLiteRoleRepository creates a new SQLiteRoleRepository.
func NewSQLiteRoleRepository(store *db.DB) *SQLiteRoleRepository {
	return &SQLiteRoleRepository{
		db:  store,
		log: logging.GetLogger("repo.role.sqlite_role_repository"),
	}
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteRoleRepository) Create(ctx context.Context, name, description string) (*domain.Role, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO roles (name, description) VALUES (?, ?)",
		name, description,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(db.ErrDuplicate, err)
		}

		return nil, fmt.Errorf("insert role: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}

	return r.Find(ctx, id)
}

// Find implements Repository.Find using SQLite.
func (r *SQLiteRoleRepository) Find(ctx context.Context, id int64) (*domain.Role, error) {
	var role domain.Role

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT id, name, description FROM roles WHERE id = ?", id,
	).Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrRoleNotFound, err)
		}

		return nil, fmt.Errorf("query role: %w", err)
	}

	return &role, nil
}

// List implements Repository.List using SQLite.
func (r *SQLiteRoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		"SELECT id, name, description FROM roles ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := []*domain.Role{}

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}

		roles = append(roles, &role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

// Update implements Repository.Update using SQLite.
func (r *SQLiteRoleRepository) Update(ctx context.Context, id int64, name, description string) (*domain.Role, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx,
		"UPDATE roles SET name = ?, description = ? WHERE id = ?",
		name, description, id,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(db.ErrDuplicate, err)
		}

		return nil, fmt.Errorf("update role: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("update role: %w", domain.ErrRoleNotFound)
	}

	return r.Find(ctx, id)
}

// Delete implements Repository.Delete using SQLite.
func (r *SQLiteRoleRepository) Delete(ctx context.Context, id int64) error {
	defer r.db.Lock()()

	if _, err := r.db.SQL.ExecContext(ctx,
		"DELETE FROM user_roles WHERE role_id = ?", id,
	); err != nil {
		return fmt.Errorf("delete role assignments: %w", err)
	}

	res, err := r.db.SQL.ExecContext(ctx, "DELETE FROM roles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete role: %w", domain.ErrRoleNotFound)
	}

	return nil
}

// Names implements Repository.Names using SQLite.
func (r *SQLiteRoleRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.SQL.QueryContext(ctx, "SELECT name FROM roles ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query role names: %w", err)
	}
	defer rows.Close()

	names := []string{}

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role names: %w", err)
	}

	return names, nil
}
