// Package directionsvc exposes direction management over HTTP. Directions
// are the business areas tasks are filed under.
package directionsvc

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
	"github.com/limaudio/taskman/internal/repo/direction"
)

// ErrValidationFailed is returned by handlers that rejected the request body.
var ErrValidationFailed = errors.New("validation failed")

// HTTPTransport exposes direction management over HTTP.
type HTTPTransport struct {
	directions direction.Repository
	log        logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(directions direction.Repository) *HTTPTransport {
	return &HTTPTransport{
		directions: directions,
		log:        logging.GetLogger("svc.directionsvc.http_transport"),
	}
}

// RegisterRoutes mounts the direction endpoints:
// - GET /directions: list directions
// - POST /directions: create a direction (admin only)
// - PATCH /directions/{id}: rename a direction (admin only)
// - PUT /directions/{id}: rename a direction (admin only)
// - DELETE /directions/{id}: delete a direction (admin only).
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodGet, "/directions", ht.HandleList)
	rt.Handle(http.MethodPost, "/directions", ht.HandleCreate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPatch, "/directions/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodPut, "/directions/{id}", ht.HandleUpdate, http_.RequireRole(domain.RoleAdmin))
	rt.Handle(http.MethodDelete, "/directions/{id}", ht.HandleDelete, http_.RequireRole(domain.RoleAdmin))
}

// HandleList returns all directions.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "direction list failed", "error", err)
		} else {
			log.DebugContext(ctx, "directions listed")
		}
	}(r.Context())

	directions, err := ht.directions.List(r.Context())
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("list directions: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]any{"items": directions})

	return nil
}

// HandleCreate adds a new direction.
// Expects a JSON body with name.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "direction create failed", "error", err)
		} else {
			log.InfoContext(ctx, "direction created")
		}
	}(r.Context())

	name, ok, err := ht.decodeName(w, r)
	if err != nil || !ok {
		return err
	}

	created, err := ht.directions.Create(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrDirectionExists) {
			http_.Error(w, http.StatusConflict, "direction already exists")
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("create direction: %w", err)
	}

	http_.JSON(w, http.StatusCreated, created)

	return nil
}

// HandleUpdate renames a direction.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdate(w, r, params)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "direction update failed", "error", err)
		} else {
			log.InfoContext(ctx, "direction updated")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	name, ok, err := ht.decodeName(w, r)
	if err != nil || !ok {
		return err
	}

	updated, err := ht.directions.Update(r.Context(), id, name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDirectionNotFound):
			http_.NotFound(w)
		case errors.Is(err, domain.ErrDirectionExists):
			http_.Error(w, http.StatusConflict, "direction already exists")
		default:
			http_.InternalError(w)
		}

		return fmt.Errorf("update direction: %w", err)
	}

	http_.JSON(w, http.StatusOK, updated)

	return nil
}

// HandleDelete removes a direction.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDelete(w, r, params)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "direction delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "direction deleted")
		}
	}(r.Context())

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		http_.NotFound(w)

		return fmt.Errorf("parse id: %w", err)
	}

	if err := ht.directions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrDirectionNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete direction: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": id})

	return nil
}

func (ht *HTTPTransport) decodeName(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	var body struct {
		Name string `json:"name"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return "", false, fmt.Errorf("decode body: %w", err)
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		http_.Error(w, http.StatusUnprocessableEntity, "name is required")

		return "", false, fmt.Errorf("%w: no name", ErrValidationFailed)
	}

	return name, true, nil
}
