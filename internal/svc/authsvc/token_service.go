package authsvc

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/limaudio/taskman/internal/domain"
)

// ErrNoSigningSecret is returned when the token service is constructed
// without a signing secret.
var ErrNoSigningSecret = errors.New("no signing secret")

// TokenServiceConfig holds configuration for the token service.
type TokenServiceConfig struct {
	// Secret is the HMAC-SHA256 signing secret
	Secret string `env:"SECRET"`
	// AccessTTL is the access token lifetime in seconds
	AccessTTL int64 `env:"ACCESS_TTL" default:"43200"`
	// RefreshTTL is the refresh token lifetime in seconds
	RefreshTTL int64 `env:"REFRESH_TTL" default:"2592000"`
}

// tokenClaims is the JWT payload carried by access tokens.
type tokenClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	cfg    TokenServiceConfig
}

// NewTokenService creates a new TokenService.
// Returns ErrNoSigningSecret if the secret is empty.
func NewTokenService(cfg TokenServiceConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSigningSecret
	}

	return &TokenService{
		secret: []byte(cfg.Secret),
		cfg:    cfg,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (ts *TokenService) AccessTTL() time.Duration {
	return time.Duration(ts.cfg.AccessTTL) * time.Second
}

// RefreshTTL returns the configured refresh token lifetime.
func (ts *TokenService) RefreshTTL() time.Duration {
	return time.Duration(ts.cfg.RefreshTTL) * time.Second
}

// Sign issues a signed access token for the given identity.
func (ts *TokenService) Sign(claims domain.Claims, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: claims.Email,
		Name:  claims.Name,
		Roles: claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.Sub, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a signed access token and returns the identity
// it carries. Returns ErrInvalidAuthToken wrapped for any malformed, expired
// or tampered token.
func (ts *TokenService) Verify(tokenString string) (domain.Claims, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return ts.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("parse token: %w", errors.Join(domain.ErrInvalidAuthToken, err))
	}

	sub, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("parse subject: %w", errors.Join(domain.ErrInvalidAuthToken, err))
	}

	return domain.Claims{
		Sub:   sub,
		Email: claims.Email,
		Name:  claims.Name,
		Roles: claims.Roles,
	}, nil
}
