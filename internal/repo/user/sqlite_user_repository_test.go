package user_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/repo/db"
	"github.com/limaudio/taskman/internal/repo/user"
)

func newTestRepo(t *testing.T) (*user.SQLiteUserRepository, *db.DB) {
	t.Helper()

	store, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return user.NewSQLiteUserRepository(store), store
}

func TestSQLiteUserRepository_CreateAndFind(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	tg := "100200300"

	created, err := repo.Create(ctx, "Alice", "alice@example.com", []byte("hash"), &tg,
		[]string{domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID == 0 || created.CreatedAt == "" {
		t.Errorf("Create() = %+v, missing id or timestamps", created)
	}

	if !slices.Contains(created.Roles, domain.RoleAdmin) {
		t.Errorf("Create() roles = %v, want admin", created.Roles)
	}

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}

	if byEmail.ID != created.ID || byEmail.TelegramID == nil || *byEmail.TelegramID != tg {
		t.Errorf("FindByEmail() = %+v", byEmail)
	}

	if _, err := repo.FindByID(ctx, created.ID+1); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("FindByID() unknown id error = %v, want ErrUserNotFound", err)
	}
}

func TestSQLiteUserRepository_CreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "Alice", "alice@example.com", []byte("hash"), nil, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := repo.Create(ctx, "Other", "alice@example.com", []byte("hash"), nil, nil)
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Errorf("Create() duplicate error = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestSQLiteUserRepository_Update(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	tg := "111"

	created, err := repo.Create(ctx, "Alice", "alice@example.com", []byte("hash"), &tg,
		[]string{domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "Alice B"

	updated, err := repo.Update(ctx, created.ID, user.UpdateFields{
		Name:        &name,
		SetTelegram: true, // clears telegram_id
	}, []string{domain.RoleSalesManager})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != name {
		t.Errorf("Update() name = %q, want %q", updated.Name, name)
	}

	if updated.TelegramID != nil {
		t.Errorf("Update() telegram_id = %v, want cleared", *updated.TelegramID)
	}

	if !slices.Equal(updated.Roles, []string{domain.RoleSalesManager}) {
		t.Errorf("Update() roles = %v, want [sales_manager]", updated.Roles)
	}

	// nil roles keeps the existing assignments
	kept, err := repo.Update(ctx, created.ID, user.UpdateFields{}, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !slices.Equal(kept.Roles, []string{domain.RoleSalesManager}) {
		t.Errorf("Update() roles = %v, want preserved [sales_manager]", kept.Roles)
	}

	if _, err := repo.Update(ctx, created.ID+100, user.UpdateFields{Name: &name}, nil); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Update() unknown id error = %v, want ErrUserNotFound", err)
	}
}

func TestSQLiteUserRepository_PermissionsResolveThroughRoles(t *testing.T) {
	t.Parallel()

	repo, store := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Alice", "alice@example.com", []byte("hash"), nil,
		[]string{domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	now := db.Now()

	if _, err := store.SQL.ExecContext(ctx,
		`INSERT INTO permissions (name, role_id, created_at, updated_at)
		 SELECT 'tasks.manage', id, ?, ? FROM roles WHERE name = ?`,
		now, now, domain.RoleAdmin); err != nil {
		t.Fatalf("insert role permission: %v", err)
	}

	if _, err := store.SQL.ExecContext(ctx,
		`INSERT INTO permissions (name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		"reports.view", created.ID, now, now); err != nil {
		t.Fatalf("insert user permission: %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	for _, want := range []string{"tasks.manage", "reports.view"} {
		if !slices.Contains(found.Permissions, want) {
			t.Errorf("permissions = %v, missing %q", found.Permissions, want)
		}
	}
}

func TestSQLiteUserRepository_EmailExists(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Alice", "alice@example.com", []byte("hash"), nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ok, err := repo.EmailExists(ctx, "alice@example.com", 0)
	if err != nil || !ok {
		t.Errorf("EmailExists() = %v, %v, want true", ok, err)
	}

	ok, err = repo.EmailExists(ctx, "alice@example.com", created.ID)
	if err != nil || ok {
		t.Errorf("EmailExists() excluding owner = %v, %v, want false", ok, err)
	}
}

func TestSQLiteUserRepository_List(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := repo.Create(ctx, "User", email, []byte("hash"), nil, nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := repo.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(page) != 2 {
		t.Fatalf("List() returned %d users, want 2", len(page))
	}

	if page[0].Email != "b@example.com" {
		t.Errorf("List() first email = %q, want b@example.com", page[0].Email)
	}
}
