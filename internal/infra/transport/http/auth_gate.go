package http

import (
	"net/http"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	context_ "github.com/limaudio/taskman/internal/infra/context"
	"github.com/limaudio/taskman/internal/infra/logging"
)

// TokenVerifier checks a bearer credential and returns its identity claims.
type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}

// BearerGate builds the authentication pre-hook: it extracts the bearer
// credential from the Authorization header (case-insensitive prefix match),
// verifies it, and attaches the resulting claims to the request context.
// Missing or invalid credentials terminate the request with 401 and a
// WWW-Authenticate challenge.
func BearerGate(verifier TokenVerifier, log logging.Logger) Gate {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))

		const prefix = "bearer "

		if header == "" || len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_request"`)
			Error(w, http.StatusUnauthorized, "Unauthorized")

			return r, false
		}

		token := strings.TrimSpace(header[len(prefix):])

		claims, err := verifier.Verify(token)
		if err != nil {
			log.WarnContext(r.Context(), "token rejected", "error", err)
			w.Header().Set("WWW-Authenticate",
				`Bearer realm="api", error="invalid_token", error_description="Invalid or expired token"`)
			Error(w, http.StatusUnauthorized, "Unauthorized")

			return r, false
		}

		return r.WithContext(context_.WithIdentity(r.Context(), claims)), true
	}
}
