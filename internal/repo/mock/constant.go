package mock

const (
	TenantID = "tenant1"
)
