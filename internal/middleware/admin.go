package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/reasyhq/platform/internal/api/write"
	"github.com/reasyhq/platform/internal/apierrors"
	"github.com/reasyhq/platform/internal/authgate"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/session"
)

type platformUserKey struct{}

// AdminAuthorizer re-validates a platform session against the directory.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, sess *session.Session) (*model.PlatformUser, error)
}

// RequireAdmin guards platform-admin API endpoints. Every request is
// re-authorized against the platform user record, so a demoted or
// deactivated admin loses access on their next request, not at cookie
// expiry.
func RequireAdmin(gate AdminAuthorizer, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := sessions.Get(ctx, r)
			if err != nil && !errors.Is(err, session.ErrNoSession) {
				log.Debug(ctx, "session lookup failed", log.ErrorAttr(err))
			}

			user, err := gate.Authorize(ctx, sess)
			if err != nil {
				if errors.Is(err, authgate.ErrNoSession) {
					write.ErrorResponse(ctx, w, apierrors.UnauthorizedErrorMessage())
					return
				}

				if authgate.ShouldInvalidate(err) {
					revokeErr := sessions.Revoke(ctx, w, r)
					if revokeErr != nil {
						log.Error(ctx, "failed to revoke session", revokeErr)
					}
				}

				write.ErrorResponse(ctx, w, apierrors.ForbiddenErrorMessage())

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, platformUserKey{}, user)))
		})
	}
}

// PlatformUserFromContext returns the admin the request was authorized as.
func PlatformUserFromContext(ctx context.Context) (*model.PlatformUser, bool) {
	user, ok := ctx.Value(platformUserKey{}).(*model.PlatformUser)
	return user, ok
}
