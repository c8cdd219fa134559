package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasyhq/platform/internal/authgate"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/constants"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/middleware"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/routing"
	"github.com/reasyhq/platform/internal/session"
	"github.com/reasyhq/platform/internal/testutils"
	reasycontext "github.com/reasyhq/platform/utils/context"
)

type stubDirectory struct {
	tenants map[string]*model.Tenant
}

func (d *stubDirectory) LookupBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	tenant, ok := d.tenants[slug]
	if !ok {
		return nil, manager.ErrTenantNotFound
	}

	return tenant, nil
}

func (d *stubDirectory) LookupByID(_ context.Context, id string) (*model.Tenant, error) {
	for _, tenant := range d.tenants {
		if tenant.ID == id {
			return tenant, nil
		}
	}

	return nil, manager.ErrTenantNotFound
}

func (d *stubDirectory) IsActive(tenant *model.Tenant) bool {
	return tenant.IsActive(time.Now())
}

type stubGate struct {
	user *model.PlatformUser
	err  error
}

func (g *stubGate) Authorize(_ context.Context, _ *session.Session) (*model.PlatformUser, error) {
	return g.user, g.err
}

type stubSessions struct {
	sess    *session.Session
	revoked bool
}

func (s *stubSessions) Get(_ context.Context, _ *http.Request) (*session.Session, error) {
	if s.sess == nil {
		return nil, session.ErrNoSession
	}

	return s.sess, nil
}

func (s *stubSessions) Revoke(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	s.revoked = true
	return nil
}

func routerConfig() config.Router {
	return config.Router{
		MainDomain:         "reasy.app",
		AdminSubdomain:     "admin",
		AdminNamespace:     "/admin",
		DashboardNamespace: "/dashboard",
		LandingPath:        "/",
	}
}

func TestEdgeMiddleware_TenantHost(t *testing.T) {
	// Arrange
	tenant := testutils.NewTenant(nil)
	directory := &stubDirectory{tenants: map[string]*model.Tenant{"acme": tenant}}
	router := routing.NewRouter(routerConfig(), directory, &stubGate{err: authgate.ErrNoSession})

	var (
		servedPath   string
		ctxTenant    string
		headerTenant string
	)

	handler := middleware.EdgeMiddleware(router, &stubSessions{})(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			servedPath = r.URL.Path
			ctxTenant, _ = reasycontext.ExtractTenantID(r.Context())
			headerTenant = r.Header.Get(constants.TenantIDHeader)
		}),
	)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/staff", nil)
	req.Host = "acme.reasy.app"

	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dashboard/staff", servedPath)
	assert.Equal(t, tenant.ID, ctxTenant)
	assert.Equal(t, tenant.ID, headerTenant)
}

func TestEdgeMiddleware_UnknownTenantRedirectsToApex(t *testing.T) {
	// Arrange
	directory := &stubDirectory{tenants: map[string]*model.Tenant{}}
	router := routing.NewRouter(routerConfig(), directory, &stubGate{err: authgate.ErrNoSession})

	handler := middleware.EdgeMiddleware(router, &stubSessions{})(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not be reached")
		}),
	)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
	req.Host = "ghost.reasy.app"

	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://reasy.app/", rec.Header().Get("Location"))
}

func TestEdgeMiddleware_StripsClientTenantHeader(t *testing.T) {
	// Arrange
	directory := &stubDirectory{tenants: map[string]*model.Tenant{}}
	router := routing.NewRouter(routerConfig(), directory, &stubGate{err: authgate.ErrNoSession})

	var headerTenant string

	handler := middleware.EdgeMiddleware(router, &stubSessions{})(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			headerTenant = r.Header.Get(constants.TenantIDHeader)
		}),
	)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/pricing", nil)
	req.Host = "reasy.app"
	req.Header.Set(constants.TenantIDHeader, "smuggled")

	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, headerTenant)
}

func TestEdgeMiddleware_AdminUnauthenticatedRedirectsToLogin(t *testing.T) {
	// Arrange
	directory := &stubDirectory{tenants: map[string]*model.Tenant{}}
	router := routing.NewRouter(routerConfig(), directory, &stubGate{err: authgate.ErrNoSession})
	sessions := &stubSessions{}

	handler := middleware.EdgeMiddleware(router, sessions)(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not be reached")
		}),
	)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/users", nil)
	req.Host = "admin.reasy.app"

	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://admin.reasy.app/admin/login", rec.Header().Get("Location"))
	assert.False(t, sessions.revoked, "no session to revoke")
}

func TestEdgeMiddleware_AdminForbiddenSessionIsRevoked(t *testing.T) {
	// Arrange
	directory := &stubDirectory{tenants: map[string]*model.Tenant{}}
	router := routing.NewRouter(routerConfig(), directory, &stubGate{err: authgate.ErrRoleForbidden})
	sessions := &stubSessions{sess: &session.Session{ID: "sess1", UserID: "u1", Email: "ops@reasy.app"}}

	handler := middleware.EdgeMiddleware(router, sessions)(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not be reached")
		}),
	)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/users", nil)
	req.Host = "admin.reasy.app"

	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://admin.reasy.app/admin/login", rec.Header().Get("Location"))
	assert.True(t, sessions.revoked)
}

func TestEdgeMiddleware_AuthorizedAdminPasses(t *testing.T) {
	// Arrange
	admin := testutils.NewPlatformUser(nil)
	directory := &stubDirectory{tenants: map[string]*model.Tenant{}}
	router := routing.NewRouter(routerConfig(), directory, &stubGate{user: admin})
	sessions := &stubSessions{sess: &session.Session{ID: "sess1", UserID: admin.ID.String(), Email: admin.Email}}

	var servedPath string

	handler := middleware.EdgeMiddleware(router, sessions)(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			servedPath = r.URL.Path
		}),
	)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/registrations", nil)
	req.Host = "admin.reasy.app"

	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/admin/registrations", servedPath)
}
