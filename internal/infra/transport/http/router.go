package http

import (
	"net/http"
	"regexp"
	"strings"

	context_ "github.com/limaudio/taskman/internal/infra/context"
	"github.com/limaudio/taskman/internal/infra/logging"
)

// Params holds the named path parameters extracted from a matched route,
// keyed by placeholder name.
type Params map[string]string

// HandlerFunc handles one matched request. Handlers write their own JSON
// response through the helpers in this package.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params Params)

// Gate runs before every non-exempt request. It either attaches request-scoped
// values (identity claims) and returns the updated request with true, or writes
// a terminal response itself and returns false.
type Gate func(w http.ResponseWriter, r *http.Request) (*http.Request, bool)

// RouteOption modifies a route at registration time.
type RouteOption func(*route)

// RequireRole marks the route as restricted to identities carrying the given
// role. Checked after the gate has attached claims; failure short-circuits with
// 403 and the handler is never entered.
func RequireRole(role string) RouteOption {
	return func(rt *route) {
		rt.role = role
	}
}

type route struct {
	raw     string
	pattern *regexp.Regexp
	handler HandlerFunc
	role    string
}

// Router is an explicit route registration table with first-registered-wins
// matching. Patterns are literal segments plus {name} placeholders; a
// placeholder matches any run of non-separator characters. The table is
// assembled once at startup and immutable afterwards.
type Router struct {
	log    logging.Logger
	routes map[string][]route
	gate   Gate
	exempt map[string]bool
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		log:    logging.GetLogger("infra.transport.http.router"),
		routes: make(map[string][]route),
		exempt: make(map[string]bool),
	}
}

// Gate installs the authentication pre-hook. Requests whose normalized path is
// in exemptPaths, and CORS preflight requests, bypass it.
func (rt *Router) Gate(gate Gate, exemptPaths ...string) {
	rt.gate = gate
	for _, p := range exemptPaths {
		rt.exempt[normalizePath(p)] = true
	}
}

// Handle registers a handler for the method and path pattern. Routes are
// matched in registration order and the first structural match wins, even when
// a later pattern is more specific; overlaps are resolved by registration
// order alone.
func (rt *Router) Handle(method, pattern string, handler HandlerFunc, opts ...RouteOption) {
	method = strings.ToUpper(method)

	entry := route{
		raw:     pattern,
		pattern: compilePattern(pattern),
		handler: handler,
	}

	for _, opt := range opts {
		opt(&entry)
	}

	rt.routes[method] = append(rt.routes[method], entry)

	rt.log.Debug("route registered", "method", method, "pattern", entry.raw, "role", entry.role)
}

// ServeHTTP implements http.Handler: CORS headers, preflight, gate, linear
// first-match scan, role guard, handler invocation, 404 fallback.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)

	writeCORSHeaders(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	if rt.gate != nil && !rt.exempt[path] {
		gated, ok := rt.gate(w, r)
		if !ok {
			return // response already sent
		}

		r = gated
	}

	for _, entry := range rt.routes[strings.ToUpper(r.Method)] {
		match := entry.pattern.FindStringSubmatch(path)
		if match == nil {
			continue
		}

		params := Params{}

		for i, name := range entry.pattern.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = match[i]
			}
		}

		if entry.role != "" && !rt.roleAllowed(r, entry.role) {
			Error(w, http.StatusForbidden, entry.role+" role required")

			return
		}

		entry.handler(w, r, params)

		return
	}

	Error(w, http.StatusNotFound, "Not Found")
}

func (rt *Router) roleAllowed(r *http.Request, role string) bool {
	claims, ok := context_.IdentityFromContext(r.Context())

	return ok && claims.HasRole(role)
}

// normalizePath strips the trailing slash except for the root path.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}

	if path[0] != '/' {
		path = "/" + path
	}

	if path != "/" {
		path = strings.TrimRight(path, "/")
	}

	if path == "" {
		return "/"
	}

	return path
}

var placeholderPattern = regexp.MustCompile(`^\{([a-zA-Z_][a-zA-Z0-9_]*)\}$`)

// compilePattern turns "/task/{id}/comments/{commentId}" into an anchored
// regexp with a named capture per placeholder. Literal segments are quoted, so
// compilation cannot fail on user patterns.
func compilePattern(pattern string) *regexp.Regexp {
	pattern = normalizePath(pattern)

	if pattern == "/" {
		return regexp.MustCompile(`^/$`)
	}

	segments := strings.Split(pattern[1:], "/")
	compiled := make([]string, 0, len(segments))

	for _, segment := range segments {
		if m := placeholderPattern.FindStringSubmatch(segment); m != nil {
			compiled = append(compiled, "(?P<"+m[1]+">[^/]+)")

			continue
		}

		compiled = append(compiled, regexp.QuoteMeta(segment))
	}

	return regexp.MustCompile("^/" + strings.Join(compiled, "/") + "$")
}

func writeCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", origin)
	header.Add("Vary", "Origin")
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
	header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
}
