package routing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reasyhq/platform/internal/authgate"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/routing"
	"github.com/reasyhq/platform/internal/session"
	"github.com/reasyhq/platform/internal/testutils"
)

type spyDirectory struct {
	tenants map[string]*model.Tenant
	err     error
	lookups []string
}

func (s *spyDirectory) LookupBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	s.lookups = append(s.lookups, slug)

	if s.err != nil {
		return nil, s.err
	}

	tenant, ok := s.tenants[slug]
	if !ok {
		return nil, manager.ErrTenantNotFound
	}

	return tenant, nil
}

func (s *spyDirectory) LookupByID(_ context.Context, id string) (*model.Tenant, error) {
	for _, tenant := range s.tenants {
		if tenant.ID == id {
			return tenant, nil
		}
	}

	return nil, manager.ErrTenantNotFound
}

func (s *spyDirectory) IsActive(tenant *model.Tenant) bool {
	return tenant.IsActive(time.Now())
}

type stubGate struct {
	err error
}

func (g *stubGate) Authorize(_ context.Context, sess *session.Session) (*model.PlatformUser, error) {
	if sess == nil {
		return nil, authgate.ErrNoSession
	}

	if g.err != nil {
		return nil, g.err
	}

	return testutils.NewPlatformUser(nil), nil
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

func newTestRouter(directory *spyDirectory, gate *stubGate) *routing.Router {
	if directory.tenants == nil {
		directory.tenants = map[string]*model.Tenant{}
	}

	return routing.NewRouter(routerConfig(), directory, gate)
}

func TestRouter_TenantHost(t *testing.T) {
	acme := testutils.NewTenant(nil)
	expired := testutils.NewTrialTenant(time.Now().Add(-time.Hour), func(tenant *model.Tenant) {
		tenant.Slug = "stale"
	})

	tests := []struct {
		name string
		host string
		path string
		want routing.Decision
	}{
		{
			name: "active tenant root rewrites to dashboard",
			host: "acme.reasy.app",
			path: "/",
			want: routing.Decision{Action: routing.ActionRewrite, Path: "/dashboard", TenantID: acme.ID},
		},
		{
			name: "active tenant deep path rewrites under dashboard",
			host: "acme.reasy.app",
			path: "/staff",
			want: routing.Decision{Action: routing.ActionRewrite, Path: "/dashboard/staff", TenantID: acme.ID},
		},
		{
			name: "already namespaced path is not double prefixed",
			host: "acme.reasy.app",
			path: "/dashboard/staff",
			want: routing.Decision{Action: routing.ActionPass, Path: "/dashboard/staff", TenantID: acme.ID},
		},
		{
			name: "unknown tenant redirects to apex",
			host: "ghost.reasy.app",
			path: "/",
			want: routing.Decision{Action: routing.ActionRedirect, Location: "https://reasy.app/"},
		},
		{
			name: "expired trial redirects to apex",
			host: "stale.reasy.app",
			path: "/",
			want: routing.Decision{Action: routing.ActionRedirect, Location: "https://reasy.app/"},
		},
		{
			name: "multi label subdomain redirects to apex",
			host: "a.b.reasy.app",
			path: "/",
			want: routing.Decision{Action: routing.ActionRedirect, Location: "https://reasy.app/"},
		},
		{
			name: "host casing and port are normalized",
			host: "ACME.Reasy.App:443",
			path: "/",
			want: routing.Decision{Action: routing.ActionRewrite, Path: "/dashboard", TenantID: acme.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directory := &spyDirectory{tenants: map[string]*model.Tenant{
				"acme":  acme,
				"stale": expired,
			}}
			router := newTestRouter(directory, &stubGate{})

			got := router.Route(context.Background(), routing.Request{Host: tt.host, Path: tt.path})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_ReservedSlugsAreNeverLookedUp(t *testing.T) {
	for _, slug := range []string{"www", "api", "mail", "staging", "blog"} {
		t.Run(slug, func(t *testing.T) {
			directory := &spyDirectory{}
			router := newTestRouter(directory, &stubGate{})

			got := router.Route(context.Background(), routing.Request{
				Host: slug + ".reasy.app",
				Path: "/",
			})

			assert.Equal(t, routing.ActionRedirect, got.Action)
			assert.Equal(t, "https://reasy.app/", got.Location)
			assert.Empty(t, directory.lookups)
		})
	}
}

func TestRouter_InvalidSlugSkipsLookup(t *testing.T) {
	directory := &spyDirectory{}
	router := newTestRouter(directory, &stubGate{})

	got := router.Route(context.Background(), routing.Request{Host: "-bad-.reasy.app", Path: "/"})

	assert.Equal(t, routing.ActionRedirect, got.Action)
	assert.Empty(t, directory.lookups)
}

func TestRouter_LookupFailureFailsClosed(t *testing.T) {
	directory := &spyDirectory{err: manager.ErrTenantLookup}
	router := newTestRouter(directory, &stubGate{})

	got := router.Route(context.Background(), routing.Request{Host: "acme.reasy.app", Path: "/"})

	assert.Equal(t, routing.ActionRedirect, got.Action)
	assert.Equal(t, "https://reasy.app/", got.Location)
	assert.Empty(t, got.TenantID)
}

func TestRouter_ApexHost(t *testing.T) {
	tests := []struct {
		name string
		path string
		want routing.Decision
	}{
		{
			name: "landing page passes",
			path: "/",
			want: routing.Decision{Action: routing.ActionPass, Path: "/"},
		},
		{
			name: "marketing page passes",
			path: "/pricing",
			want: routing.Decision{Action: routing.ActionPass, Path: "/pricing"},
		},
		{
			name: "dashboard namespace bounces to landing",
			path: "/dashboard/staff",
			want: routing.Decision{Action: routing.ActionRedirect, Location: "/"},
		},
		{
			name: "admin namespace bounces to landing",
			path: "/admin/users",
			want: routing.Decision{Action: routing.ActionRedirect, Location: "/"},
		},
		{
			name: "dashboard-ish prefix is not treated as namespace",
			path: "/dashboards",
			want: routing.Decision{Action: routing.ActionPass, Path: "/dashboards"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&spyDirectory{}, &stubGate{})

			got := router.Route(context.Background(), routing.Request{Host: "reasy.app", Path: tt.path})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_AdminHost(t *testing.T) {
	authorized := &session.Session{UserID: "9f4e1b18-3a86-4b9e-9c5e-0a6de19a7e00", Email: "ops@reasy.test"}

	tests := []struct {
		name string
		path string
		sess *session.Session
		gate *stubGate
		want routing.Decision
	}{
		{
			name: "login path passes without session",
			path: "/admin/login",
			gate: &stubGate{},
			want: routing.Decision{Action: routing.ActionPass, Path: "/admin/login"},
		},
		{
			name: "short login path rewrites without session",
			path: "/login",
			gate: &stubGate{},
			want: routing.Decision{Action: routing.ActionRewrite, Path: "/admin/login"},
		},
		{
			name: "authorized session on login path goes to dashboard",
			path: "/admin/login",
			sess: authorized,
			gate: &stubGate{},
			want: routing.Decision{Action: routing.ActionRedirect, Location: "https://admin.reasy.app/admin/dashboard"},
		},
		{
			name: "authorized session passes namespaced path",
			path: "/admin/registrations",
			sess: authorized,
			gate: &stubGate{},
			want: routing.Decision{Action: routing.ActionPass, Path: "/admin/registrations"},
		},
		{
			name: "authorized session root rewrites into namespace",
			path: "/",
			sess: authorized,
			gate: &stubGate{},
			want: routing.Decision{Action: routing.ActionRewrite, Path: "/admin"},
		},
		{
			name: "no session redirects to login",
			path: "/admin/registrations",
			gate: &stubGate{},
			want: routing.Decision{Action: routing.ActionRedirect, Location: "https://admin.reasy.app/admin/login"},
		},
		{
			name: "forbidden role redirects to login and signs out",
			path: "/admin/registrations",
			sess: authorized,
			gate: &stubGate{err: authgate.ErrRoleForbidden},
			want: routing.Decision{
				Action:   routing.ActionRedirect,
				Location: "https://admin.reasy.app/admin/login",
				SignOut:  true,
			},
		},
		{
			name: "unknown user redirects to login and signs out",
			path: "/admin/registrations",
			sess: authorized,
			gate: &stubGate{err: authgate.ErrNotPlatformUser},
			want: routing.Decision{
				Action:   routing.ActionRedirect,
				Location: "https://admin.reasy.app/admin/login",
				SignOut:  true,
			},
		},
		{
			name: "transient gate failure keeps the session",
			path: "/admin/registrations",
			sess: authorized,
			gate: &stubGate{err: authgate.ErrGateLookup},
			want: routing.Decision{
				Action:   routing.ActionRedirect,
				Location: "https://admin.reasy.app/admin/login",
				SignOut:  false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&spyDirectory{}, tt.gate)

			got := router.Route(context.Background(), routing.Request{
				Host:    "admin.reasy.app",
				Path:    tt.path,
				Session: tt.sess,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_ForeignHostRedirectsToApex(t *testing.T) {
	router := newTestRouter(&spyDirectory{}, &stubGate{})

	for _, host := range []string{"evil.com", "reasy.app.evil.com", "app.other.dev"} {
		got := router.Route(context.Background(), routing.Request{Host: host, Path: "/"})
		assert.Equal(t, routing.ActionRedirect, got.Action, host)
		assert.Equal(t, "https://reasy.app/", got.Location, host)
	}
}

func TestRouter_DevelopmentDomainUsesHTTP(t *testing.T) {
	cfg := routerConfig()
	cfg.MainDomain = "localhost:9002"

	acme := testutils.NewTenant(nil)
	directory := &spyDirectory{tenants: map[string]*model.Tenant{"acme": acme}}
	router := routing.NewRouter(cfg, directory, &stubGate{})

	got := router.Route(context.Background(), routing.Request{Host: "acme.localhost:9002", Path: "/"})
	assert.Equal(t, routing.ActionRewrite, got.Action)
	assert.Equal(t, "/dashboard", got.Path)

	got = router.Route(context.Background(), routing.Request{Host: "ghost.localhost:9002", Path: "/"})
	assert.Equal(t, "http://localhost:9002/", got.Location)
}

func TestRouter_RoutingIsIdempotent(t *testing.T) {
	acme := testutils.NewTenant(nil)
	directory := &spyDirectory{tenants: map[string]*model.Tenant{"acme": acme}}
	router := newTestRouter(directory, &stubGate{})

	first := router.Route(context.Background(), routing.Request{Host: "acme.reasy.app", Path: "/staff"})
	assert.Equal(t, routing.ActionRewrite, first.Action)

	second := router.Route(context.Background(), routing.Request{Host: "acme.reasy.app", Path: first.Path})
	assert.Equal(t, routing.ActionPass, second.Action)
	assert.Equal(t, first.Path, second.Path)
}
