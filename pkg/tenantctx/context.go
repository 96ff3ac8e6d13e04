package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// TenantContext carries the resolved tenant and its database handle for one
// request. It is threaded explicitly through the request context instead of
// living in ambient per-request globals, so nothing leaks across requests or
// test harness reuse.
type TenantContext struct {
	TenantID snowflake.ID
	Slug     string
	Name     string
	DB       *gorm.DB
}

type ctxKey struct{}

func With(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

func From(ctx context.Context) (TenantContext, bool) {
	if ctx == nil {
		return TenantContext{}, false
	}
	tc, ok := ctx.Value(ctxKey{}).(TenantContext)
	return tc, ok
}

// DB resolves the bind for tenant-scoped models: the request's tenant engine
// when one was resolved, otherwise the process default. Platform-pinned
// repositories never call this; they hold the platform handle directly.
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tc, ok := From(ctx); ok && tc.DB != nil {
		return tc.DB
	}
	return fallback
}
