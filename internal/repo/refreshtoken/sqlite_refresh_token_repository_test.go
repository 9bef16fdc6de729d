package refreshtoken_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/repo/db"
	"github.com/limaudio/taskman/internal/repo/refreshtoken"
)

func newTestRepo(t *testing.T) *refreshtoken.SQLiteRefreshTokenRepository {
	t.Helper()

	store, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return refreshtoken.NewSQLiteRefreshTokenRepository(store)
}

func TestSQLiteRefreshTokenRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).Unix()

	if err := repo.Create(ctx, "digest-a", 1, expires); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.Find(ctx, "digest-a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if found.UserID != 1 || found.ExpiresAt != expires {
		t.Errorf("Find() = %+v", found)
	}

	if err := repo.Delete(ctx, "digest-a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.Find(ctx, "digest-a"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("Find() after delete error = %v, want ErrInvalidRefreshToken", err)
	}

	// deleting an absent token is not an error
	if err := repo.Delete(ctx, "digest-a"); err != nil {
		t.Errorf("Delete() absent error = %v", err)
	}
}

func TestSQLiteRefreshTokenRepository_ConsumeSingleUse(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).Unix()

	if err := repo.Create(ctx, "digest-b", 2, expires); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	consumed, err := repo.Consume(ctx, "digest-b")
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	if consumed.UserID != 2 || consumed.ExpiresAt != expires {
		t.Errorf("Consume() = %+v", consumed)
	}

	// The token is gone; a second presenter gets nothing.
	if _, err := repo.Consume(ctx, "digest-b"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("Consume() replay error = %v, want ErrInvalidRefreshToken", err)
	}

	if _, err := repo.Consume(ctx, "never-issued"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("Consume() unknown digest error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestSQLiteRefreshTokenRepository_DeleteExpired(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().Unix()

	if err := repo.Create(ctx, "stale", 1, now-10); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Create(ctx, "fresh", 1, now+3600); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.DeleteExpired(ctx, now); err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}

	if _, err := repo.Find(ctx, "stale"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("stale token survived the sweep: %v", err)
	}

	if _, err := repo.Find(ctx, "fresh"); err != nil {
		t.Errorf("fresh token was swept: %v", err)
	}
}
