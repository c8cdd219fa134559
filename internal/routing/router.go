package routing

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/reasyhq/platform/internal/authgate"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/reserved"
	"github.com/reasyhq/platform/internal/session"
)

// Action is what the edge does with a classified request.
type Action string

const (
	// ActionPass serves the request path unchanged.
	ActionPass Action = "pass"
	// ActionRewrite serves the request under a different internal path.
	ActionRewrite Action = "rewrite"
	// ActionRedirect sends the client elsewhere.
	ActionRedirect Action = "redirect"
)

// Request is the routing-relevant slice of an incoming request.
type Request struct {
	Host    string
	Path    string
	Session *session.Session
}

// Decision is the routing outcome. Exactly one of Path or Location is set
// for rewrites and redirects respectively. TenantID is set whenever the
// request was attributed to a tenant. SignOut tells the edge to destroy the
// session cookie alongside a redirect.
type Decision struct {
	Action   Action
	Path     string
	Location string
	TenantID string
	SignOut  bool
}

// AdminAuthorizer re-validates an admin session on every request.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, sess *session.Session) (*model.PlatformUser, error)
}

// Router classifies requests by hostname: apex, admin portal, tenant
// subdomain or foreign host. It is pure decision logic; applying the
// decision to the HTTP exchange is middleware's job.
type Router struct {
	cfg       config.Router
	directory manager.Directory
	gate      AdminAuthorizer
}

func NewRouter(cfg config.Router, directory manager.Directory, gate AdminAuthorizer) *Router {
	return &Router{
		cfg:       cfg,
		directory: directory,
		gate:      gate,
	}
}

// Route classifies the request and decides pass, rewrite or redirect.
// Unknown hosts, unknown tenants and inactive tenants all land on the apex
// landing page; lookups that fail for other reasons do too, never serving
// tenant data on an unverified host.
func (r *Router) Route(ctx context.Context, req Request) Decision {
	host := normalizeHost(req.Host, r.cfg.MainDomain)
	path := normalizePath(req.Path)

	switch {
	case host == r.cfg.MainDomain:
		return r.routeApex(path)
	case host == r.cfg.AdminSubdomain+"."+r.cfg.MainDomain:
		return r.routeAdmin(ctx, path, req.Session)
	default:
		slug, ok := subdomainSlug(host, r.cfg.MainDomain)
		if !ok {
			return r.redirectApex()
		}

		return r.routeTenant(ctx, slug, path)
	}
}

// routeApex serves the marketing site. Namespaced application paths have no
// meaning without a subdomain and bounce back to the landing page.
func (r *Router) routeApex(path string) Decision {
	if hasNamespace(path, r.cfg.DashboardNamespace) || hasNamespace(path, r.cfg.AdminNamespace) {
		return Decision{Action: ActionRedirect, Location: r.cfg.LandingPath}
	}

	return Decision{Action: ActionPass, Path: path}
}

func (r *Router) routeAdmin(ctx context.Context, path string, sess *session.Session) Decision {
	loginPath := r.cfg.AdminNamespace + "/login"

	_, err := r.gate.Authorize(ctx, sess)

	onLoginPath := path == "/login" || path == loginPath

	if err != nil {
		if onLoginPath {
			// The login page must stay reachable without a session or the
			// redirect would loop.
			return r.rewriteInto(r.cfg.AdminNamespace, path, "")
		}

		return Decision{
			Action:   ActionRedirect,
			Location: r.adminURL(loginPath),
			SignOut:  authgate.ShouldInvalidate(err),
		}
	}

	if onLoginPath {
		return Decision{
			Action:   ActionRedirect,
			Location: r.adminURL(r.cfg.AdminNamespace + "/dashboard"),
		}
	}

	return r.rewriteInto(r.cfg.AdminNamespace, path, "")
}

func (r *Router) routeTenant(ctx context.Context, slug string, path string) Decision {
	// Reserved names can never belong to a tenant; skip the directory.
	if reserved.IsReserved(slug) {
		return r.redirectApex()
	}

	if err := model.ValidateSlug(slug); err != nil {
		return r.redirectApex()
	}

	tenant, err := r.directory.LookupBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, manager.ErrTenantNotFound) {
			log.Error(ctx, "tenant routing degraded to apex redirect", err)
		}

		return r.redirectApex()
	}

	if !r.directory.IsActive(tenant) {
		return r.redirectApex()
	}

	return r.rewriteInto(r.cfg.DashboardNamespace, path, tenant.ID)
}

// rewriteInto places path under the namespace without ever double-prefixing,
// so routing an already-rewritten path is a no-op.
func (r *Router) rewriteInto(namespace, path, tenantID string) Decision {
	if hasNamespace(path, namespace) {
		return Decision{Action: ActionPass, Path: path, TenantID: tenantID}
	}

	target := namespace
	if path != "/" {
		target = namespace + path
	}

	return Decision{Action: ActionRewrite, Path: target, TenantID: tenantID}
}

func (r *Router) redirectApex() Decision {
	return Decision{Action: ActionRedirect, Location: r.cfg.Scheme() + "://" + r.cfg.MainDomain + r.cfg.LandingPath}
}

func (r *Router) adminURL(path string) string {
	return r.cfg.Scheme() + "://" + r.cfg.AdminSubdomain + "." + r.cfg.MainDomain + path
}

// normalizeHost lowercases the host and strips the port unless the configured
// main domain itself carries one (development setups).
func normalizeHost(host, mainDomain string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if strings.Contains(mainDomain, ":") {
		return host
	}

	if bare, _, err := net.SplitHostPort(host); err == nil {
		return bare
	}

	return host
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}

	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}

	return path
}

// subdomainSlug extracts the single label in front of the main domain.
func subdomainSlug(host, mainDomain string) (string, bool) {
	label, found := strings.CutSuffix(host, "."+mainDomain)
	if !found || label == "" || strings.Contains(label, ".") {
		return "", false
	}

	return label, true
}

// hasNamespace reports whether path is the namespace itself or nested below it.
func hasNamespace(path, namespace string) bool {
	return path == namespace || strings.HasPrefix(path, namespace+"/")
}
