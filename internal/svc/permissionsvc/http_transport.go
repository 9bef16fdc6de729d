// Package permissionsvc exposes permission management over HTTP. A
// permission is a named capability optionally bound to a user or a role.
package permissionsvc

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
	"github.com/limaudio/taskman/internal/repo/permission"
	"github.com/limaudio/taskman/internal/validation"
)

// ErrValidationFailed is returned by handlers that rejected the request body.
var ErrValidationFailed = errors.New("validation failed")

// HTTPTransport exposes permission management over HTTP.
type HTTPTransport struct {
	permissions permission.Repository
	validator   *validation.Engine
	log         logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(permissions permission.Repository, validator *validation.Engine) *HTTPTransport {
	return &HTTPTransport{
		permissions: permissions,
		validator:   validator,
		log:         logging.GetLogger("svc.permissionsvc.http_transport"),
	}
}

// RegisterRoutes mounts the permission endpoints:
// - GET /permissions: list permissions
// - POST /permissions: create a permission (admin only)
// - PATCH /permissions/{id}: update a permission (admin only)
// - PUT /permissions/{id}: update a permission (admin only)
// - DELETE /permissions/{id}: delete a permission (admin only).
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodGet, "/permissions", ht.HandleList)
	rt.Handle(http.MethodPost, "/permissions", ht.HandleCreate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPatch, "/permissions/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPut, "/permissions/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodDelete, "/permissions/{id}", ht.HandleDelete, http_.RequireRole(domain.RoleAdmin))
}

// HandleList returns all permissions.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "permission list failed", "error", err)
		} else {
			log.DebugContext(ctx, "permissions listed")
		}
	}(r.Context())

	permissions, err := ht.permissions.List(r.Context())
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("list permissions: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]any{"items": permissions})

	return nil
}

// HandleCreate adds a new permission.
// Expects a JSON body with name and optional user_id and role_id.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "permission create failed", "error", err)
		} else {
			log.InfoContext(ctx, "permission created")
		}
	}(r.Context())

	body, ok, err := ht.decodeAndValidate(w, r, 0)
	if err != nil || !ok {
		return err
	}

	created, err := ht.permissions.Create(r.Context(), strings.TrimSpace(body.Name), body.UserID, body.RoleID)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("create permission: %w", err)
	}

	http_.JSON(w, http.StatusCreated, created)

	return nil
}

// HandleUpdate replaces a permission's name and bindings.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdate(w, r, params)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "permission update failed", "error", err)
		} else {
			log.InfoContext(ctx, "permission updated")
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

	updated, err := ht.permissions.Update(r.Context(), id, strings.TrimSpace(body.Name), body.UserID, body.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("update permission: %w", err)
	}

	http_.JSON(w, http.StatusOK, updated)

	return nil
}

// HandleDelete removes a permission.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDelete(w, r, params)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "permission delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "permission deleted")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	if err := ht.permissions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrPermissionNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete permission: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": id})

	return nil
}

type permissionBody struct {
	Name   string `json:"name"`
	UserID *int64 `json:"user_id"`
	RoleID *int64 `json:"role_id"`
}

func (ht *HTTPTransport) decodeAndValidate(
	w http.ResponseWriter, r *http.Request, excludeID int64,
) (permissionBody, bool, error) {
	var body permissionBody

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return body, false, fmt.Errorf("decode body: %w", err)
	}

	messages, err := ht.validator.Validate(r.Context(), []validation.Field{
		{Name: "name", Value: strings.TrimSpace(body.Name), Constraints: []validation.Constraint{
			validation.Required(), validation.Unique("permissions", "name"),
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
