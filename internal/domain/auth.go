package domain

import "errors"

var (
	// ErrNoAuthToken is returned when a bearer credential is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token's signature is invalid or it has expired.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned when a refresh secret is unknown, expired or already used.
	ErrInvalidRefreshToken = errors.New("invalid_refresh_token")
)

// Claims is the request-scoped identity decoded from an access token.
// It is carried on the request context for the duration of one request
// and never persisted.
type Claims struct {
	Sub   int64    `json:"sub"`
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// HasRole reports whether the identity carries the given role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}

	return false
}

// RefreshToken is the server-side record of a refresh credential.
// Only the one-way digest of the secret is stored; the raw value is
// returned to the client exactly once at issue time.
type RefreshToken struct {
	Digest    string
	UserID    int64
	ExpiresAt int64 // Unix timestamp
}

// Session is the credential pair handed out on login and refresh.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}
