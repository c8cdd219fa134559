package daemon

import (
	"net/http"
	"strings"
)

// PublicAPIPatterns lists every pattern served on the apex domain without a
// session. Everything else must live under the admin or dashboard namespace
// the edge rewrites into.
var PublicAPIPatterns = map[string]struct{}{
	"POST /api/signup": {},
}

// ServeMux wraps http.ServeMux and rejects handler registrations outside the
// known namespaces at startup, so a misplaced route is a panic during boot
// instead of an unreachable endpoint in production.
type ServeMux struct {
	httpServeMux       http.ServeMux
	AdminNamespace     string
	DashboardNamespace string
}

func NewServeMux(adminNamespace, dashboardNamespace string) *ServeMux {
	return &ServeMux{
		httpServeMux:       http.ServeMux{},
		AdminNamespace:     adminNamespace,
		DashboardNamespace: dashboardNamespace,
	}
}

func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServeMux.ServeHTTP(w, r)
}

func (m *ServeMux) Handle(pattern string, handler http.Handler) {
	m.checkPattern(pattern)
	m.httpServeMux.Handle(pattern, handler)
}

func (m *ServeMux) HandleFunc(
	pattern string,
	handler func(http.ResponseWriter, *http.Request),
) {
	m.checkPattern(pattern)
	m.httpServeMux.HandleFunc(pattern, handler)
}

func (m *ServeMux) checkPattern(pattern string) {
	path := pattern
	if _, rest, found := strings.Cut(pattern, " "); found {
		path = rest
	}

	_, public := PublicAPIPatterns[pattern]

	if !public &&
		!strings.HasPrefix(path, m.AdminNamespace+"/") &&
		!strings.HasPrefix(path, m.DashboardNamespace+"/") {
		panic("pattern not in a routed namespace or the public allow list: " + pattern)
	}
}
