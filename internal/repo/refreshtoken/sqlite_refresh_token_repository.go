package refreshtoken

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/db"
)

// SQLiteRefreshTokenRepository implements Repository on the shared SQLite store.
type SQLiteRefreshTokenRepository struct {
	db  *db.DB
	log logging.Logger
}

var _ Repository = (*SQLiteRefreshTokenRepository)(nil)

// NewSQLiteRefreshTokenRepository creates a new SQLiteRefreshTokenRepository.
func NewSQLiteRefreshTokenRepository(store *db.DB) *SQLiteRefreshTokenRepository {
	return &SQLiteRefreshTokenRepository{
		db:  store,
		log: logging.GetLogger("repo.refreshtoken.sqlite_refresh_token_repository"),
	}
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteRefreshTokenRepository) Create(ctx context.Context, digest string, userID, expiresAt int64) error {
	defer r.db.Lock()()

	if _, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO refresh_tokens (digest, user_id, expires_at) VALUES (?, ?, ?)",
		digest, userID, expiresAt,
	); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// Find implements Repository.Find using SQLite.
func (r *SQLiteRefreshTokenRepository) Find(ctx context.Context, digest string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT digest, user_id, expires_at FROM refresh_tokens WHERE digest = ?",
		digest,
	).Scan(&token.Digest, &token.UserID, &token.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrInvalidRefreshToken, err)
		}

		return nil, fmt.Errorf("query refresh token: %w", err)
	}

	return &token, nil
}

// Consume implements Repository.Consume using SQLite. The lookup and the
// delete run under the store's write lock, so two consumers presenting the
// same digest cannot interleave; the rows-affected check catches a digest
// removed by the expiry sweep in between.
func (r *SQLiteRefreshTokenRepository) Consume(ctx context.Context, digest string) (*domain.RefreshToken, error) {
	defer r.db.Lock()()

	var token domain.RefreshToken

	err := r.db.SQL.QueryRowContext(ctx,
		"SELECT digest, user_id, expires_at FROM refresh_tokens WHERE digest = ?",
		digest,
	).Scan(&token.Digest, &token.UserID, &token.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrInvalidRefreshToken, err)
		}

		return nil, fmt.Errorf("query refresh token: %w", err)
	}

	res, err := r.db.SQL.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE digest = ?", digest,
	)
	if err != nil {
		return nil, fmt.Errorf("delete refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("delete refresh token: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("refresh token already consumed: %w", domain.ErrInvalidRefreshToken)
	}

	return &token, nil
}

// Delete implements Repository.Delete using SQLite.
func (r *SQLiteRefreshTokenRepository) Delete(ctx context.Context, digest string) error {
	defer r.db.Lock()()

	if _, err := r.db.SQL.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE digest = ?", digest,
	); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// DeleteExpired implements Repository.DeleteExpired using SQLite.
func (r *SQLiteRefreshTokenRepository) DeleteExpired(ctx context.Context, now int64) error {
	defer r.db.Lock()()

	if _, err := r.db.SQL.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at <= ?", now,
	); err != nil {
		return fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	return nil
}
