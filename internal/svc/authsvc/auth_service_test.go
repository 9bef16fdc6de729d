package authsvc_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/repo/refreshtoken"
	"github.com/limaudio/taskman/internal/repo/user"
	"github.com/limaudio/taskman/internal/svc/authsvc"
)

type mockUserRepo struct {
	user.Repository

	byEmail map[string]*domain.User
	byID    map[int64]*domain.User
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if usr, ok := m.byEmail[email]; ok {
		return usr, nil
	}

	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if usr, ok := m.byID[id]; ok {
		return usr, nil
	}

	return nil, domain.ErrUserNotFound
}

type mockRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshRepo() *mockRefreshRepo {
	return &mockRefreshRepo{tokens: map[string]*domain.RefreshToken{}}
}

func (m *mockRefreshRepo) Create(_ context.Context, digest string, userID, expiresAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[digest] = &domain.RefreshToken{Digest: digest, UserID: userID, ExpiresAt: expiresAt}

	return nil
}

func (m *mockRefreshRepo) Find(_ context.Context, digest string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token, ok := m.tokens[digest]; ok {
		return token, nil
	}

	return nil, domain.ErrInvalidRefreshToken
}

func (m *mockRefreshRepo) Consume(_ context.Context, digest string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.tokens[digest]
	if !ok {
		return nil, domain.ErrInvalidRefreshToken
	}

	delete(m.tokens, digest)

	return token, nil
}

func (m *mockRefreshRepo) Delete(_ context.Context, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, digest)

	return nil
}

func (m *mockRefreshRepo) DeleteExpired(_ context.Context, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for digest, token := range m.tokens {
		if token.ExpiresAt <= now {
			delete(m.tokens, digest)
		}
	}

	return nil
}

func (m *mockRefreshRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tokens)
}

var _ refreshtoken.Repository = (*mockRefreshRepo)(nil)

func newTestService(t *testing.T, users *mockUserRepo) (*authsvc.AuthService, *mockRefreshRepo) {
	t.Helper()

	tokens, err := authsvc.NewTokenService(authsvc.TokenServiceConfig{
		Secret:     "test-secret",
		AccessTTL:  3600,
		RefreshTTL: 86400,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	refresh := newMockRefreshRepo()

	return authsvc.NewAuthService(users, refresh, tokens), refresh
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()

	hash, err := authsvc.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	return &domain.User{
		ID:           1,
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Roles:        []string{domain.RoleAdmin},
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	usr := testUser(t, "secret123")
	users := &mockUserRepo{
		byEmail: map[string]*domain.User{usr.Email: usr},
		byID:    map[int64]*domain.User{usr.ID: usr},
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "admin@example.com", password: "secret123"},
		{name: "email is case insensitive", email: "  Admin@Example.COM ", password: "secret123"},
		{name: "wrong password", email: "admin@example.com", password: "nope", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "secret123", wantErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newTestService(t, users)

			session, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}

			if session.Token == "" || session.RefreshToken == "" {
				t.Error("Login() returned empty tokens")
			}

			if session.User.ID != usr.ID {
				t.Errorf("Login() user = %d, want %d", session.User.ID, usr.ID)
			}

			claims, err := svc.Verify(session.Token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}

			if claims.Sub != usr.ID || claims.Email != usr.Email {
				t.Errorf("Verify() claims = %+v", claims)
			}

			if !claims.HasRole(domain.RoleAdmin) {
				t.Error("Verify() claims missing admin role")
			}
		})
	}
}

func TestAuthService_RefreshSingleUse(t *testing.T) {
	t.Parallel()

	usr := testUser(t, "secret123")
	users := &mockUserRepo{
		byEmail: map[string]*domain.User{usr.Email: usr},
		byID:    map[int64]*domain.User{usr.ID: usr},
	}

	svc, _ := newTestService(t, users)

	session, err := svc.Login(context.Background(), usr.Email, "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	next, err := svc.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if next.RefreshToken == session.RefreshToken {
		t.Error("Refresh() returned the consumed token again")
	}

	// Replaying the consumed token must fail.
	if _, err := svc.Refresh(context.Background(), session.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("Refresh() replay error = %v, want %v", err, domain.ErrInvalidRefreshToken)
	}
}

func TestAuthService_RefreshExpired(t *testing.T) {
	t.Parallel()

	usr := testUser(t, "secret123")
	users := &mockUserRepo{
		byEmail: map[string]*domain.User{usr.Email: usr},
		byID:    map[int64]*domain.User{usr.ID: usr},
	}

	svc, refresh := newTestService(t, users)

	session, err := svc.Login(context.Background(), usr.Email, "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Backdate every stored token past its expiry.
	for _, token := range refresh.tokens {
		token.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	}

	if _, err := svc.Refresh(context.Background(), session.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("Refresh() expired error = %v, want %v", err, domain.ErrInvalidRefreshToken)
	}

	// An expired token is consumed too.
	if refresh.count() != 0 {
		t.Errorf("expired token still stored: %d left", refresh.count())
	}
}

func TestAuthService_RefreshConcurrentConsume(t *testing.T) {
	t.Parallel()

	usr := testUser(t, "secret123")
	users := &mockUserRepo{
		byEmail: map[string]*domain.User{usr.Email: usr},
		byID:    map[int64]*domain.User{usr.ID: usr},
	}

	svc, _ := newTestService(t, users)

	session, err := svc.Login(context.Background(), usr.Email, "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Many presenters of the same token race; exactly one may win a session.
	const presenters = 8

	var (
		succeeded atomic.Int64
		start     = make(chan struct{})
		wg        sync.WaitGroup
	)

	for range presenters {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			_, err := svc.Refresh(context.Background(), session.RefreshToken)

			switch {
			case err == nil:
				succeeded.Add(1)
			case !errors.Is(err, domain.ErrInvalidRefreshToken):
				t.Errorf("Refresh() error = %v, want %v", err, domain.ErrInvalidRefreshToken)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := succeeded.Load(); got != 1 {
		t.Errorf("refresh token was consumed successfully %d times, want 1", got)
	}
}

func TestAuthService_RefreshUnknownToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &mockUserRepo{})

	if _, err := svc.Refresh(context.Background(), "never-issued"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("Refresh() error = %v, want %v", err, domain.ErrInvalidRefreshToken)
	}
}

func TestTokenService_VerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	tokens, err := authsvc.NewTokenService(authsvc.TokenServiceConfig{
		Secret:     "test-secret",
		AccessTTL:  3600,
		RefreshTTL: 86400,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	signed, err := tokens.Sign(domain.Claims{Sub: 1, Email: "a@b.co"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts, want 3", len(parts))
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{name: "tampered header", token: "x" + signed},
		{name: "tampered payload", token: parts[0] + ".eyJzdWIiOiI5OTkifQ." + parts[2]},
		{name: "tampered signature", token: parts[0] + "." + parts[1] + ".AAAA"},
		{name: "missing signature", token: parts[0] + "." + parts[1] + "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tokens.Verify(tt.token); !errors.Is(err, domain.ErrInvalidAuthToken) {
				t.Errorf("Verify() error = %v, want %v", err, domain.ErrInvalidAuthToken)
			}
		})
	}
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	tokens, err := authsvc.NewTokenService(authsvc.TokenServiceConfig{
		Secret:     "test-secret",
		AccessTTL:  3600,
		RefreshTTL: 86400,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	signed, err := tokens.Sign(domain.Claims{Sub: 1}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if _, err := tokens.Verify(signed); !errors.Is(err, domain.ErrInvalidAuthToken) {
		t.Errorf("Verify() error = %v, want %v", err, domain.ErrInvalidAuthToken)
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := authsvc.NewTokenService(authsvc.TokenServiceConfig{}); !errors.Is(err, authsvc.ErrNoSigningSecret) {
		t.Errorf("NewTokenService() error = %v, want %v", err, authsvc.ErrNoSigningSecret)
	}
}
