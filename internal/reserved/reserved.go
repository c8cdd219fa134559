// Package reserved holds the fixed set of subdomain labels that can never be
// claimed as tenant slugs. The router checks it before any directory lookup,
// so a reserved-looking subdomain is never resolved as a tenant even if a row
// with that slug exists.
package reserved

// slugs is the registry shared by registration validation and routing.
var slugs = map[string]struct{}{
	"admin":       {},
	"www":         {},
	"api":         {},
	"mail":        {},
	"ftp":         {},
	"localhost":   {},
	"staging":     {},
	"test":        {},
	"dev":         {},
	"development": {},
	"prod":        {},
	"production":  {},
	"app":         {},
	"dashboard":   {},
	"support":     {},
	"help":        {},
	"docs":        {},
	"blog":        {},
	"status":      {},
}

// IsReserved reports whether the slug can never belong to a tenant.
func IsReserved(slug string) bool {
	_, ok := slugs[slug]
	return ok
}

// All returns a copy of the registry for callers that need to enumerate it.
func All() []string {
	out := make([]string, 0, len(slugs))
	for s := range slugs {
		out = append(out, s)
	}

	return out
}
