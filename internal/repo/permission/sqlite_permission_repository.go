package permission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/db"
)

// SQLitePermissionRepository implements Repository on the shared SQLite store.
type SQLitePermissionRepository struct {
	db  *db.DB
	log logging.Logger
}

var _ Repository = (*SQLitePermissionRepository)(nil)

// NewSQLitePermissionRepository creates a new SQLitePermissionRepository.
func NewSQLitePermissionRepository(store *db.DB) *SQLitePermissionRepository {
	return &SQLitePermissionRepository{
		db:  store,
		log: logging.GetLogger("repo.permission.sqlite_permission_repository"),
	}
}

// Create implements Repository.Create using SQLite.
func (r *SQLitePermissionRepository) Create(
	ctx context.Context, name string, userID, roleID *int64,
) (*domain.Permission, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO permissions (name, user_id, role_id) VALUES (?, ?, ?)",
		name, userID, roleID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(db.ErrDuplicate, err)
		}

		return nil, fmt.Errorf("insert permission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert permission: %w", err)
	}

	return r.Find(ctx, id)
}

// Find implements Repository.Find using SQLite.
func (r *SQLitePermissionRepository) Find(ctx context.Context, id int64) (*domain.Permission, error) {
	var perm domain.Permission

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT id, name, user_id, role_id FROM permissions WHERE id = ?", id,
	).Scan(&perm.ID, &perm.Name, &perm.UserID, &perm.RoleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrPermissionNotFound, err)
		}

		return nil, fmt.Errorf("query permission: %w", err)
	}

	return &perm, nil
}

// List implements Repository.List using SQLite.
func (r *SQLitePermissionRepository) List(ctx context.Context) ([]*domain.Permission, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		"SELECT id, name, user_id, role_id FROM permissions ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	perms := []*domain.Permission{}

	for rows.Next() {
		var perm domain.Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.UserID, &perm.RoleID); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}

		perms = append(perms, &perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return perms, nil
}

// Update implements Repository.Update using SQLite.
func (r *SQLitePermissionRepository) Update(
	ctx context.Context, id int64, name string, userID, roleID *int64,
) (*domain.Permission, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx,
		"UPDATE permissions SET name = ?, user_id = ?, role_id = ? WHERE id = ?",
		name, userID, roleID, id,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(db.ErrDuplicate, err)
		}

		return nil, fmt.Errorf("update permission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update permission: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("update permission: %w", domain.ErrPermissionNotFound)
	}

	return r.Find(ctx, id)
}

// Delete implements Repository.Delete using SQLite.
func (r *SQLitePermissionRepository) Delete(ctx context.Context, id int64) error {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx, "DELETE FROM permissions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete permission: %w", domain.ErrPermissionNotFound)
	}

	return nil
}
