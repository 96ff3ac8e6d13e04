package authctx

import (
	"context"

	"github.com/orbitcrm/orbitcrm/internal/auth/domain"
)

// PrincipalKey is the request context key for the authenticated principal.
type PrincipalKey struct{}

// WithPrincipal stores the acting principal in the context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey{}, p)
}

// PrincipalFromContext returns the acting principal, if authenticated.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	p, ok := ctx.Value(PrincipalKey{}).(domain.Principal)
	return p, ok
}
