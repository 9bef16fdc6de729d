package usersvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/validation"
)

// ErrValidationFailed is returned by handlers that rejected the request body.
var ErrValidationFailed = errors.New("validation failed")

const (
	defaultListLimit = 50
	minPasswordLen   = 6
)

// HTTPTransport exposes user management over HTTP.
type HTTPTransport struct {
	userSvc   *UserService
	validator *validation.Engine
	log       logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(userSvc *UserService, validator *validation.Engine) *HTTPTransport {
	return &HTTPTransport{
		userSvc:   userSvc,
		validator: validator,
		log:       logging.GetLogger("svc.usersvc.http_transport"),
	}
}

// RegisterRoutes mounts the user endpoints:
// - GET /users: list users
// - POST /users: create a user (admin only)
// - GET /users/{id}: fetch a user
// - PATCH /users/{id}: update a user (admin only)
// - PUT /users/{id}: update a user (admin only).
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodGet, "/users", ht.HandleList)
	rt.Handle(http.MethodPost, "/users", ht.HandleCreate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodGet, "/users/{id}", ht.HandleGet)
	rt.Handle(http.MethodPatch, "/users/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPut, "/users/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
}

// HandleList returns a page of users.
// Accepts limit and offset query parameters.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user list failed", "error", err)
		} else {
			log.DebugContext(ctx, "users listed")
		}
	}(r.Context())

	limit, offset := http_.Pagination(r, defaultListLimit)

	users, err := ht.userSvc.List(r.Context(), limit, offset)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("list users: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]any{
		"items":  users,
		"limit":  limit,
		"offset": offset,
	})

	return nil
}

// HandleCreate adds a new user.
// Expects a JSON body with name, email, password and optional roles and
// telegram_id.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user create failed", "error", err)
		} else {
			log.InfoContext(ctx, "user created")
		}
	}(r.Context())

	var body struct {
		Name       string   `json:"name"`
		Email      string   `json:"email"`
		Password   string   `json:"password"`
		TelegramID *string  `json:"telegram_id"`
		Roles      []string `json:"roles"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	messages, err := ht.validator.Validate(r.Context(), []validation.Field{
		{Name: "name", Value: body.Name, Constraints: []validation.Constraint{
			validation.Required(),
		}},
		{Name: "email", Value: body.Email, Constraints: []validation.Constraint{
			validation.Required(), validation.Email(),
		}},
		{Name: "password", Value: body.Password, Constraints: []validation.Constraint{
			validation.Required(), validation.MinLength(minPasswordLen),
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

	exists, err := ht.userSvc.EmailExists(r.Context(), body.Email, 0)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("check email: %w", err)
	}

	if exists {
		http_.Error(w, http.StatusConflict, "email already exists")

		return fmt.Errorf("%w: duplicate email", ErrValidationFailed)
	}

	usr, err := ht.userSvc.Create(r.Context(), CreateParams{
		Name:       body.Name,
		Email:      body.Email,
		Password:   body.Password,
		TelegramID: body.TelegramID,
		Roles:      body.Roles,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			http_.Error(w, http.StatusConflict, "email already exists")
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("create user: %w", err)
	}

	log.With(logging.Group("user", "id", usr.ID, "email", usr.Email))
	http_.JSON(w, http.StatusCreated, usr)

	return nil
}

// HandleGet returns a single user.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleGet(w, r, params)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user get failed", "error", err)
		} else {
			log.DebugContext(ctx, "user fetched")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	usr, err := ht.userSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("get user: %w", err)
	}

	http_.JSON(w, http.StatusOK, usr)

	return nil
}

// HandleUpdate applies a partial update to a user.
// Expects a JSON body; absent fields are left unchanged, an explicit null
// telegram_id clears the binding.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdate(w, r, params)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user update failed", "error", err)
		} else {
			log.InfoContext(ctx, "user updated")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	var body map[string]any

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	update := UpdateParams{}

	if raw, ok := body["name"]; ok {
		name, _ := raw.(string)
		update.Name = &name
	}

	if raw, ok := body["email"]; ok {
		email, _ := raw.(string)

		messages, err := ht.validator.Validate(r.Context(), []validation.Field{
			{Name: "email", Value: email, Constraints: []validation.Constraint{
				validation.Required(), validation.Email(),
			}},
		}, id)
		if err != nil {
			http_.InternalError(w)

			return fmt.Errorf("validate email: %w", err)
		}

		if len(messages) > 0 {
			http_.ValidationErrors(w, messages)

			return fmt.Errorf("%w: %v", ErrValidationFailed, messages)
		}

		exists, err := ht.userSvc.EmailExists(r.Context(), email, id)
		if err != nil {
			http_.InternalError(w)

			return fmt.Errorf("check email: %w", err)
		}

		if exists {
			http_.Error(w, http.StatusConflict, "email already exists")

			return fmt.Errorf("%w: duplicate email", ErrValidationFailed)
		}

		update.Email = &email
	}

	if raw, ok := body["password"]; ok {
		password, _ := raw.(string)

		messages, err := ht.validator.Validate(r.Context(), []validation.Field{
			{Name: "password", Value: password, Constraints: []validation.Constraint{
				validation.Required(), validation.MinLength(minPasswordLen),
			}},
		}, id)
		if err != nil {
			http_.InternalError(w)

			return fmt.Errorf("validate password: %w", err)
		}

		if len(messages) > 0 {
			http_.ValidationErrors(w, messages)

			return fmt.Errorf("%w: %v", ErrValidationFailed, messages)
		}

		update.Password = &password
	}

	if raw, ok := body["telegram_id"]; ok {
		update.SetTelegram = true

		if raw != nil {
			telegramID := fmt.Sprintf("%v", raw)
			update.TelegramID = &telegramID
		}
	}

	if raw, ok := body["roles"]; ok {
		update.SetRoles = true

		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if name, ok := item.(string); ok {
					update.Roles = append(update.Roles, name)
				}
			}
		}
	}

	usr, err := ht.userSvc.Update(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			http_.NotFound(w)
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			http_.Error(w, http.StatusConflict, "email already exists")
		default:
			http_.InternalError(w)
		}

		return fmt.Errorf("update user: %w", err)
	}

	http_.JSON(w, http.StatusOK, usr)

	return nil
}
