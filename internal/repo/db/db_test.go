package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/limaudio/taskman/internal/repo/db"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	store, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestOpen_SeedsDefaultRoles(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"admin", "sales_manager"} {
		ok, err := store.Exists(ctx, "roles", "name", name, 0)
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}

		if !ok {
			t.Errorf("seed role %q missing", name)
		}
	}
}

func TestExists_ExcludesGivenID(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)
	ctx := context.Background()

	res, err := store.SQL.ExecContext(ctx,
		`INSERT INTO directions (name, created_at, updated_at) VALUES (?, ?, ?)`,
		"Marketing", db.Now(), db.Now())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	id, _ := res.LastInsertId()

	ok, err := store.Exists(ctx, "directions", "name", "Marketing", 0)
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v, want true", ok, err)
	}

	ok, err = store.Exists(ctx, "directions", "name", "Marketing", id)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}

	if ok {
		t.Error("Exists() with excluded id = true, want false")
	}
}

func TestNow_IsRFC3339UTC(t *testing.T) {
	t.Parallel()

	stamp := db.Now()

	parsed, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		t.Fatalf("Now() = %q, not RFC 3339: %v", stamp, err)
	}

	if parsed.Location() != time.UTC {
		t.Errorf("Now() = %q, not UTC", stamp)
	}
}
