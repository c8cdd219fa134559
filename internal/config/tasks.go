package config

const (
	TypeTenantProvision = "tenant:provision"
	TypeTrialExpiry     = "tenant:trial-expiry"
)

var DefinedTasks = map[string]struct{}{
	TypeTenantProvision: {},
	TypeTrialExpiry:     {},
}
