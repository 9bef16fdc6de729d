// Package rolesvc exposes role management over HTTP. Roles are plain named
// groupings; membership is managed through the user endpoints.
package rolesvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/repo/role"
	"github.com/limaudio/taskman/internal/validation"
)

// ErrValidationFailed is returned by handlers that rejected the request body.
var ErrValidationFailed = errors.New("validation failed")

// HTTPTransport exposes role management over HTTP.
type HTTPTransport struct {
	roles     role.Repository
	validator *validation.Engine
	log       logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(roles role.Repository, validator *validation.Engine) *HTTPTransport {
	return &HTTPTransport{
		roles:     roles,
		validator: validator,
		log:       logging.GetLogger("svc.rolesvc.http_transport"),
	}
}

// RegisterRoutes mounts the role endpoints:
// - GET /roles: list roles
// - POST /roles: create a role (admin only)
// - PATCH /roles/{id}: update a role (admin only)
// - PUT /roles/{id}: update a role (admin only)
// - DELETE /roles/{id}: delete a role (admin only).
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodGet, "/roles", ht.HandleList)
	rt.Handle(http.MethodPost, "/roles", ht.HandleCreate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPatch, "/roles/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPut, "/roles/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodDelete, "/roles/{id}", ht.HandleDelete, http_.RequireRole(domain.RoleAdmin))
}

// HandleList returns all roles.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "role list failed", "error", err)
		} else {
			log.DebugContext(ctx, "roles listed")
		}
	}(r.Context())

	roles, err := ht.roles.List(r.Context())
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("list roles: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]any{"items": roles})

	return nil
}

// HandleCreate adds a new role.
// Expects a JSON body with name and optional description.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "role create failed", "error", err)
		} else {
			log.InfoContext(ctx, "role created")
		}
	}(r.Context())

	body, ok, err := ht.decodeAndValidate(w, r, 0)
	if err != nil || !ok {
		return err
	}

	created, err := ht.roles.Create(r.Context(), strings.TrimSpace(body.Name), strings.TrimSpace(body.Description))
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("create role: %w", err)
	}

	http_.JSON(w, http.StatusCreated, created)

	return nil
}

// HandleUpdate renames a role.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdate(w, r, params)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "role update failed", "error", err)
		} else {
			log.InfoContext(ctx, "role updated")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	body, ok, err := ht.decodeAndValidate(w, r, id)
	if err != nil || !ok {
		return err
	}

	updated, err := ht.roles.Update(r.Context(), id, strings.TrimSpace(body.Name), strings.TrimSpace(body.Description))
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("update role: %w", err)
	}

	http_.JSON(w, http.StatusOK, updated)

	return nil
}

// HandleDelete removes a role.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDelete(w, r, params)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "role delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "role deleted")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	if err := ht.roles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete role: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": id})

	return nil
}

type roleBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ht *HTTPTransport) decodeAndValidate(
	w http.ResponseWriter, r *http.Request, excludeID int64,
) (roleBody, bool, error) {
	var body roleBody

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return body, false, fmt.Errorf("decode body: %w", err)
	}

	messages, err := ht.validator.Validate(r.Context(), []validation.Field{
		{Name: "name", Value: strings.TrimSpace(body.Name), Constraints: []validation.Constraint{
			validation.Required(), validation.Unique("roles", "name"),
		}},
	}, excludeID)
	if err != nil {
		http_.InternalError(w)

		return body, false, fmt.Errorf("validate body: %w", err)
	}

	if len(messages) > 0 {
		http_.ValidationErrors(w, messages)

		return body, false, fmt.Errorf("%w: %v", ErrValidationFailed, messages)
	}

	return body, true, nil
}
