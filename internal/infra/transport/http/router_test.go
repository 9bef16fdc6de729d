package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/limaudio/taskman/internal/domain"
	context_ "github.com/limaudio/taskman/internal/infra/context"
	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
)

func echoHandler(name string) http_.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request, params http_.Params) {
		http_.JSON(w, http.StatusOK, map[string]any{"handler": name, "params": params})
	}
}

func perform(rt *http_.Router, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return body
}

func TestRouter_ParamExtraction(t *testing.T) {
	t.Parallel()

	rt := http_.NewRouter()
	rt.Handle(http.MethodGet, "/task/{id}/comments/{commentId}", echoHandler("comment"))

	rec := perform(rt, http.MethodGet, "/task/42/comments/7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)

	params, _ := body["params"].(map[string]any)
	if params["id"] != "42" || params["commentId"] != "7" {
		t.Errorf("params = %v", params)
	}
}

func TestRouter_FirstRegisteredWins(t *testing.T) {
	t.Parallel()

	// A placeholder registered first shadows a later literal route.
	rt := http_.NewRouter()
	rt.Handle(http.MethodGet, "/task/{id}", echoHandler("byID"))
	rt.Handle(http.MethodGet, "/task/export", echoHandler("export"))

	rec := perform(rt, http.MethodGet, "/task/export")

	body := decodeBody(t, rec)
	if body["handler"] != "byID" {
		t.Errorf("handler = %v, want byID", body["handler"])
	}
}

func TestRouter_LiteralBeforePlaceholder(t *testing.T) {
	t.Parallel()

	rt := http_.NewRouter()
	rt.Handle(http.MethodGet, "/task/export", echoHandler("export"))
	rt.Handle(http.MethodGet, "/task/{id}", echoHandler("byID"))

	rec := perform(rt, http.MethodGet, "/task/export")

	body := decodeBody(t, rec)
	if body["handler"] != "export" {
		t.Errorf("handler = %v, want export", body["handler"])
	}
}

func TestRouter_TrailingSlash(t *testing.T) {
	t.Parallel()

	rt := http_.NewRouter()
	rt.Handle(http.MethodGet, "/users", echoHandler("users"))

	if rec := perform(rt, http.MethodGet, "/users/"); rec.Code != http.StatusOK {
		t.Errorf("GET /users/ status = %d, want 200", rec.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	rt := http_.NewRouter()
	rt.Handle(http.MethodGet, "/users", echoHandler("users"))

	rec := perform(rt, http.MethodPost, "/users")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["error"] != "Not Found" {
		t.Errorf("body = %v", body)
	}
}

func TestRouter_OptionsPreflight(t *testing.T) {
	t.Parallel()

	rt := http_.NewRouter()
	rt.Gate(func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		http_.Error(w, http.StatusUnauthorized, "Unauthorized")

		return r, false
	})

	rec := perform(rt, http.MethodOptions, "/users")

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PATCH") {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestRouter_GateExemption(t *testing.T) {
	t.Parallel()

	denyAll := func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		http_.Error(w, http.StatusUnauthorized, "Unauthorized")

		return r, false
	}

	rt := http_.NewRouter()
	rt.Gate(denyAll, "/auth/login")
	rt.Handle(http.MethodPost, "/auth/login", echoHandler("login"))
	rt.Handle(http.MethodGet, "/users", echoHandler("users"))

	if rec := perform(rt, http.MethodPost, "/auth/login"); rec.Code != http.StatusOK {
		t.Errorf("exempt path status = %d, want 200", rec.Code)
	}

	if rec := perform(rt, http.MethodGet, "/users"); rec.Code != http.StatusUnauthorized {
		t.Errorf("gated path status = %d, want 401", rec.Code)
	}
}

func TestRouter_RequireRole(t *testing.T) {
	t.Parallel()

	identityGate := func(claims domain.Claims) http_.Gate {
		return func(_ http.ResponseWriter, r *http.Request) (*http.Request, bool) {
			return r.WithContext(context_.WithIdentity(r.Context(), claims)), true
		}
	}

	tests := []struct {
		name       string
		roles      []string
		wantStatus int
	}{
		{"admin allowed", []string{domain.RoleAdmin}, http.StatusOK},
		{"other role forbidden", []string{domain.RoleSalesManager}, http.StatusForbidden},
		{"no roles forbidden", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := http_.NewRouter()
			rt.Gate(identityGate(domain.Claims{Sub: 1, Roles: tt.roles}))
			rt.Handle(http.MethodPost, "/users", echoHandler("create"),
				http_.RequireRole(domain.RoleAdmin))

			rec := perform(rt, http.MethodPost, "/users")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusForbidden {
				body := decodeBody(t, rec)
				if body["error"] != domain.RoleAdmin+" role required" {
					t.Errorf("body = %v", body)
				}
			}
		})
	}
}

type staticVerifier struct {
	claims domain.Claims
	err    error
}

func (v staticVerifier) Verify(string) (domain.Claims, error) {
	return v.claims, v.err
}

func TestBearerGate(t *testing.T) {
	t.Parallel()

	log := logging.GetLogger("test")

	tests := []struct {
		name       string
		header     string
		err        error
		wantStatus int
	}{
		{"valid token", "Bearer good", nil, http.StatusOK},
		{"case-insensitive scheme", "bearer good", nil, http.StatusOK},
		{"missing header", "", nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", nil, http.StatusUnauthorized},
		{"rejected token", "Bearer bad", domain.ErrInvalidAuthToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := http_.NewRouter()
			rt.Gate(http_.BearerGate(staticVerifier{
				claims: domain.Claims{Sub: 5},
				err:    tt.err,
			}, log))
			rt.Handle(http.MethodGet, "/users", func(w http.ResponseWriter, r *http.Request, _ http_.Params) {
				claims, ok := context_.IdentityFromContext(r.Context())
				if !ok || claims.Sub != 5 {
					t.Error("identity missing from context")
				}

				http_.JSON(w, http.StatusOK, map[string]string{"ok": "yes"})
			})

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusUnauthorized &&
				rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate challenge")
			}
		})
	}
}

func TestBearerGate_RoleCheckedAfterAuth(t *testing.T) {
	t.Parallel()

	// An unauthenticated request must get 401 from the gate, never 403 from
	// the role guard.
	rt := http_.NewRouter()
	rt.Gate(http_.BearerGate(staticVerifier{err: errors.New("no")}, logging.GetLogger("test")))
	rt.Handle(http.MethodPost, "/roles", echoHandler("create"), http_.RequireRole(domain.RoleAdmin))

	rec := perform(rt, http.MethodPost, "/roles")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
