package authgate

import (
	"context"
	"errors"

	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo"
	"github.com/reasyhq/platform/internal/session"
)

var (
	ErrNoSession       = errors.New("no session to authorize")
	ErrNotPlatformUser = errors.New("session does not belong to a platform user")
	ErrUserInactive    = errors.New("platform user is deactivated")
	ErrRoleForbidden   = errors.New("platform user role does not grant portal access")
	ErrGateLookup      = errors.New("could not verify platform user")
)

// Gate authorizes admin-portal access. Possession of a valid session is not
// enough: the user behind it must still exist, still be active and still hold
// an admin role at the time of the request.
type Gate struct {
	repo repo.Repo
}

func New(r repo.Repo) *Gate {
	return &Gate{repo: r}
}

// Authorize re-validates the session's user against the directory and returns
// the platform user on success. The lookup key is the session email, so
// revoking or demoting the account takes effect on the next request even
// while the session is still live.
func (g *Gate) Authorize(ctx context.Context, sess *session.Session) (*model.PlatformUser, error) {
	if sess == nil || sess.Email == "" {
		return nil, ErrNoSession
	}

	if !sess.IsPlatform() {
		return nil, ErrNotPlatformUser
	}

	user := model.PlatformUser{}

	_, err := g.repo.First(ctx, &user, *repo.NewQuery().Where(repo.EmailField, sess.Email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.Wrap(ErrNotPlatformUser, err)
		}

		log.Error(ctx, "platform user lookup failed", err)

		return nil, errs.Wrap(ErrGateLookup, err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !user.Role.IsAdmin() {
		return nil, ErrRoleForbidden
	}

	return &user, nil
}

// ShouldInvalidate reports whether the failed authorization means the session
// itself is no longer trustworthy and must be destroyed. Transient lookup
// failures keep the session so a retry can succeed.
func ShouldInvalidate(err error) bool {
	return errors.Is(err, ErrNotPlatformUser) ||
		errors.Is(err, ErrUserInactive) ||
		errors.Is(err, ErrRoleForbidden)
}
