package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/validation"
)

// ErrValidationFailed is returned by handlers that rejected the request body.
var ErrValidationFailed = errors.New("validation failed")

// HTTPTransport exposes login and token refresh over HTTP.
type HTTPTransport struct {
	authSvc   *AuthService
	validator *validation.Engine
	log       logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(authSvc *AuthService, validator *validation.Engine) *HTTPTransport {
	return &HTTPTransport{
		authSvc:   authSvc,
		validator: validator,
		log:       logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// RegisterRoutes mounts the auth endpoints:
// - POST /auth/login: exchange credentials for a session
// - POST /auth/refresh: exchange a refresh token for a new session.
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodPost, "/auth/login", ht.HandleLogin)
	rt.Handle(http.MethodPost, "/auth/refresh", ht.HandleRefresh)
}

// HandleLogin processes login requests.
// Expects a JSON body with email and password.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	messages, err := ht.validator.Validate(r.Context(), []validation.Field{
		{Name: "email", Value: body.Email, Constraints: []validation.Constraint{
			validation.Required(), validation.Email(),
		}},
		{Name: "password", Value: body.Password, Constraints: []validation.Constraint{
			validation.Required(),
		}},
	}, 0)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("validate body: %w", err)
	}

	if len(messages) > 0 {
		http_.ValidationErrors(w, messages)

		return fmt.Errorf("%w: %v", ErrValidationFailed, messages)
	}

	log = log.With(logging.Group("user", "email", body.Email))

	session, err := ht.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http_.Error(w, http.StatusUnauthorized, "invalid credentials")
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("login: %w", err)
	}

	http_.JSON(w, http.StatusOK, session)

	return nil
}

// HandleRefresh processes refresh token exchanges.
// Expects a JSON body with refresh_token.
func (ht *HTTPTransport) HandleRefresh(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleRefresh(w, r)
}

func (ht *HTTPTransport) handleRefresh(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "token refresh failed", "error", err)
		} else {
			log.DebugContext(ctx, "token refreshed")
		}
	}(r.Context())

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	if body.RefreshToken == "" {
		http_.ValidationErrors(w, []string{"refresh_token is required"})

		return fmt.Errorf("%w: no refresh_token", ErrValidationFailed)
	}

	session, err := ht.authSvc.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			http_.Error(w, http.StatusUnauthorized, domain.ErrInvalidRefreshToken.Error())
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("refresh: %w", err)
	}

	http_.JSON(w, http.StatusOK, session)

	return nil
}
