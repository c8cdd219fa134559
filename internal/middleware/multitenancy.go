package middleware

import (
	"errors"
	"net/http"

	multitenancyMiddleware "github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"

	"github.com/reasyhq/platform/internal/constants"
)

// ErrTenantNotResolved is returned when the edge did not attribute the request to a tenant.
var ErrTenantNotResolved = errors.New("tenant not resolved for request")

// InjectMultiTenancy returns a middleware function that establishes tenant
// context for the request. The tenant id is taken from the header the edge
// middleware sets after resolving the subdomain, so tenant-scoped repository
// calls downstream land in the right schema.
func InjectMultiTenancy() func(http.Handler) http.Handler {
	WithTenantConfig := multitenancyMiddleware.DefaultWithTenantConfig
	WithTenantConfig.TenantGetters = []func(r *http.Request) (string, error){
		func(r *http.Request) (string, error) {
			tenant := r.Header.Get(constants.TenantIDHeader)
			if tenant == "" {
				return "", ErrTenantNotResolved
			}

			return tenant, nil
		},
	}

	return multitenancyMiddleware.WithTenant(WithTenantConfig)
}
