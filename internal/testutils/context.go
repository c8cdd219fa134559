package testutils

import (
	"context"

	"github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"
)

// CreateCtxWithTenant returns a context scoped to the given tenant.
func CreateCtxWithTenant(tenant string) context.Context {
	return context.WithValue(context.Background(), nethttp.TenantKey, tenant)
}
