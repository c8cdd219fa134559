package constants

const (
	APIName = "REASY"

	DefaultConfigPath1 = "/etc/reasy"
	DefaultConfigPath2 = "$HOME/.reasy"
)

const (
	// TenantIDHeader carries the resolved tenant id to later request stages
	// so they can re-establish tenant context without re-parsing the Host header.
	TenantIDHeader = "X-Tenant-Id"

	SessionCookieName = "reasy_session"
)

const (
	DefaultTop  = 20
	DefaultSkip = 0
)
