package refreshtoken

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

// Repository defines the interface for refresh token persistence. Tokens are
// stored by digest only; the raw token never touches the database.
type Repository interface {
	// Create stores a refresh token digest for a user.
	Create(ctx context.Context, digest string, userID, expiresAt int64) error

	// Find retrieves a refresh token by digest.
	// Returns ErrInvalidRefreshToken if no such token exists.
	Find(ctx context.Context, digest string) (*domain.RefreshToken, error)

	// Consume atomically removes a refresh token and returns it. An absent
	// token — never issued, expired away or already consumed — yields
	// ErrInvalidRefreshToken; concurrent consumers of the same digest cannot
	// both succeed.
	Consume(ctx context.Context, digest string) (*domain.RefreshToken, error)

	// Delete removes a refresh token. Deleting an absent token is not an
	// error.
	Delete(ctx context.Context, digest string) error

	// DeleteExpired removes every token whose expiry is at or before now
	// (unix seconds).
	DeleteExpired(ctx context.Context, now int64) error
}
