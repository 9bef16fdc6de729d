package context

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

const contextKeyIdentity = contextKey("identity")

// IdentityFromContext extracts the authenticated identity claims from the context.
// Returns the claims and true if present, or zero claims and false if the request
// never passed the authentication gate.
func IdentityFromContext(ctx context.Context) (domain.Claims, bool) {
	claims, ok := ctx.Value(contextKeyIdentity).(domain.Claims)

	return claims, ok
}

// WithIdentity creates a new context carrying the authenticated identity claims.
// The value lives for one request only and is never shared across requests.
func WithIdentity(ctx context.Context, claims domain.Claims) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, claims)
}
