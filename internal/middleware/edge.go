package middleware

import (
	"context"
	"net/http"

	"github.com/reasyhq/platform/internal/constants"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/routing"
	"github.com/reasyhq/platform/internal/session"
	reasycontext "github.com/reasyhq/platform/utils/context"
)

// SessionStore is the slice of the session store the edge needs.
type SessionStore interface {
	Get(ctx context.Context, r *http.Request) (*session.Session, error)
	Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// EdgeMiddleware classifies every request by hostname and applies the
// routing decision: redirects leave immediately, rewrites swap the request
// path, and tenant attributions are propagated through the context and the
// tenant header before the request reaches the handlers.
func EdgeMiddleware(router *routing.Router, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Clients must not be able to smuggle a tenant attribution in.
			r.Header.Del(constants.TenantIDHeader)

			sess, err := sessions.Get(ctx, r)
			if err != nil {
				sess = nil
			}

			decision := router.Route(ctx, routing.Request{
				Host:    r.Host,
				Path:    r.URL.Path,
				Session: sess,
			})

			if decision.Action == routing.ActionRedirect {
				if decision.SignOut {
					revokeErr := sessions.Revoke(ctx, w, r)
					if revokeErr != nil {
						log.Error(ctx, "failed to revoke session", revokeErr)
					}
				}

				http.Redirect(w, r, decision.Location, http.StatusFound)

				return
			}

			if decision.Action == routing.ActionRewrite {
				r.URL.Path = decision.Path
				r.URL.RawPath = ""
			}

			if decision.TenantID != "" {
				ctx = reasycontext.CreateTenantContext(ctx, decision.TenantID)
				ctx = log.InjectTenant(ctx, decision.TenantID)
				r.Header.Set(constants.TenantIDHeader, decision.TenantID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
