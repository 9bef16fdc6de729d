// Package authsvc implements login, token refresh and access token
// verification for the task manager API.
package authsvc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/refreshtoken"
	"github.com/limaudio/taskman/internal/repo/user"
)

const refreshTokenBytes = 32

// AuthService implements credential verification and the refresh token
// lifecycle. Access tokens are stateless JWTs; refresh tokens are opaque,
// single-use and stored by digest only.
type AuthService struct {
	users   user.Repository
	refresh refreshtoken.Repository
	tokens  *TokenService
	log     logging.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users user.Repository,
	refresh refreshtoken.Repository,
	tokens *TokenService,
) *AuthService {
	return &AuthService{
		users:   users,
		refresh: refresh,
		tokens:  tokens,
		log:     logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// Login verifies the given credentials and returns a fresh session.
// Returns ErrInvalidCredentials for an unknown email or a wrong password;
// the two cases are indistinguishable to the caller.
func (as *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	usr, err := as.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			err = errors.Join(domain.ErrInvalidCredentials, err)
		}

		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("verify password: %w", errors.Join(domain.ErrInvalidCredentials, err))
	}

	return as.issueSession(ctx, usr)
}

// Refresh exchanges a refresh token for a fresh session. The presented token
// is consumed whether or not the exchange succeeds; replaying it yields
// ErrInvalidRefreshToken.
func (as *AuthService) Refresh(ctx context.Context, rawToken string) (*domain.Session, error) {
	digest := digestToken(rawToken)

	// Single use: the token is burned atomically before anything else can
	// fail, and only one of any concurrent presenters gets the record back.
	stored, err := as.refresh.Consume(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	if stored.ExpiresAt <= time.Now().Unix() {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrInvalidRefreshToken)
	}

	usr, err := as.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			err = errors.Join(domain.ErrInvalidRefreshToken, err)
		}

		return nil, fmt.Errorf("find user: %w", err)
	}

	return as.issueSession(ctx, usr)
}

// Verify validates an access token. Satisfies the transport layer's
// TokenVerifier.
func (as *AuthService) Verify(tokenString string) (domain.Claims, error) {
	return as.tokens.Verify(tokenString)
}

// HashPassword derives the stored password hash for a plaintext password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return hash, nil
}

func (as *AuthService) issueSession(ctx context.Context, usr *domain.User) (*domain.Session, error) {
	claims := domain.Claims{
		Sub:   usr.ID,
		Email: usr.Email,
		Name:  usr.Name,
		Roles: usr.Roles,
	}

	accessToken, err := as.tokens.Sign(claims, as.tokens.AccessTTL())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	rawRefresh, err := as.issueRefresh(ctx, usr.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &domain.Session{
		Token:        accessToken,
		RefreshToken: rawRefresh,
		User:         usr,
	}, nil
}

func (as *AuthService) issueRefresh(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random refresh token: %w", err)
	}

	raw := base64.RawURLEncoding.EncodeToString(buf)
	expiresAt := time.Now().Add(as.tokens.RefreshTTL()).Unix()

	// Opportunistic cleanup; stale digests are harmless but pile up.
	if err := as.refresh.DeleteExpired(ctx, time.Now().Unix()); err != nil {
		as.log.WarnContext(ctx, "refresh token sweep failed", "error", err)
	}

	if err := as.refresh.Create(ctx, digestToken(raw), userID, expiresAt); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	return raw, nil
}

func digestToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
