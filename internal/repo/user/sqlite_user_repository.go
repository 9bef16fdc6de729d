package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/db"
)

// SQLiteUserRepository implements Repository on the shared SQLite store.
type SQLiteUserRepository struct {
	db  *db.DB
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a new SQLiteUserRepository.
func NewSQLiteUserRepository(store *db.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db:  store,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
	}
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteUserRepository) Create(
	ctx context.Context, name, email string, passwordHash []byte, telegramID *string, roles []string,
) (*domain.User, error) {
	defer r.db.Lock()()

	now := db.Now()

	res, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, telegram_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		name, email, passwordHash, telegramID, now, now,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrEmailAlreadyExists, err)
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := r.replaceRoles(ctx, id, roles); err != nil {
		return nil, err
	}

	return r.findByID(ctx, id)
}

// FindByID implements Repository.FindByID using SQLite.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findByID(ctx, id)
}

// FindByEmail implements Repository.FindByEmail using SQLite.
func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var id int64

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email = ?", email,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, fmt.Errorf("query user: %w", err)
	}

	return r.findByID(ctx, id)
}

// List implements Repository.List using SQLite.
func (r *SQLiteUserRepository) List(ctx context.Context, limit, offset int64) ([]*domain.User, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		"SELECT id FROM users ORDER BY id LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	users := make([]*domain.User, 0, len(ids))

	for _, id := range ids {
		user, err := r.findByID(ctx, id)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, nil
}

// Update implements Repository.Update using SQLite.
func (r *SQLiteUserRepository) Update(
	ctx context.Context, id int64, fields UpdateFields, roles []string,
) (*domain.User, error) {
	defer r.db.Lock()()

	sets := []string{"updated_at = ?"}
	args := []any{db.Now()}

	if fields.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *fields.Name)
	}

	if fields.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *fields.Email)
	}

	if fields.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, fields.PasswordHash)
	}

	if fields.SetTelegram {
		sets = append(sets, "telegram_id = ?")
		args = append(args, fields.TelegramID)
	}

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrEmailAlreadyExists, err)
		}

		return nil, fmt.Errorf("update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("update user: %w", domain.ErrUserNotFound)
	}

	if roles != nil {
		if err := r.replaceRoles(ctx, id, roles); err != nil {
			return nil, err
		}
	}

	return r.findByID(ctx, id)
}

// EmailExists implements Repository.EmailExists using SQLite.
func (r *SQLiteUserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.db.Exists(ctx, "users", "email", email, excludeID)
}

// TelegramID implements Repository.TelegramID using SQLite.
func (r *SQLiteUserRepository) TelegramID(ctx context.Context, userID int64) (*string, error) {
	var telegramID *string

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT telegram_id FROM users WHERE id = ?", userID,
	).Scan(&telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, fmt.Errorf("query telegram id: %w", err)
	}

	return telegramID, nil
}

func (r *SQLiteUserRepository) findByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, telegram_id, created_at, updated_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.TelegramID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, fmt.Errorf("query user: %w", err)
	}

	user.Roles, err = r.roleNames(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Permissions, err = r.permissionNames(ctx, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *SQLiteUserRepository) roleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	return scanNames(rows, "user roles")
}

func (r *SQLiteUserRepository) permissionNames(ctx context.Context, userID int64) ([]string, error) {
	// Direct grants plus permissions inherited through role membership.
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT DISTINCT p.name FROM permissions p
		 LEFT JOIN user_roles ur ON ur.role_id = p.role_id
		 WHERE p.user_id = ? OR ur.user_id = ?
		 ORDER BY p.name`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query user permissions: %w", err)
	}
	defer rows.Close()

	return scanNames(rows, "user permissions")
}

func (r *SQLiteUserRepository) replaceRoles(ctx context.Context, userID int64, roles []string) error {
	if _, err := r.db.SQL.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}

	for _, role := range roles {
		if _, err := r.db.SQL.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name = ?",
			userID, role,
		); err != nil {
			return fmt.Errorf("assign user role: %w", err)
		}
	}

	return nil
}

func scanNames(rows *sql.Rows, what string) ([]string, error) {
	names := []string{}

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}

	return names, nil
}
