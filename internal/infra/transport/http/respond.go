package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// JSON writes v as the JSON response body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	// The status line is already on the wire; an encode failure here can only
	// mean the client went away.
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a single-message error body: {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ValidationErrors writes the 422 body for a failed validation:
// {"errors": [messages]}.
func ValidationErrors(w http.ResponseWriter, messages []string) {
	JSON(w, http.StatusUnprocessableEntity, map[string][]string{"errors": messages})
}

// InternalError writes a generic 500 without leaking internals.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal error")
}

// NotFound writes the canonical 404 body.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not Found")
}

// Pagination reads limit and offset query parameters, clamping limit to at
// least 1 and offset to at least 0.
func Pagination(r *http.Request, defaultLimit int64) (limit, offset int64) {
	limit = defaultLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			limit = max(parsed, 1)
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			offset = max(parsed, 0)
		}
	}

	return limit, offset
}

// DecodeJSON parses the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}
