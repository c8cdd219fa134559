package reserved_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasyhq/platform/internal/reserved"
)

func TestIsReserved(t *testing.T) {
	for _, slug := range reserved.All() {
		assert.True(t, reserved.IsReserved(slug), "expected %q to be reserved", slug)
	}

	for _, slug := range []string{"acme", "blue-lagoon", "studio54", ""} {
		assert.False(t, reserved.IsReserved(slug), "expected %q to be claimable", slug)
	}
}

func TestRegistryContainsContractedNames(t *testing.T) {
	// These names are a contract with registration: removing any of them
	// would let a tenant shadow a platform surface.
	for _, slug := range []string{
		"admin", "www", "api", "mail", "ftp", "localhost", "staging", "test",
		"dev", "development", "prod", "production", "app", "dashboard",
		"support", "help", "docs", "blog", "status",
	} {
		assert.True(t, reserved.IsReserved(slug), "missing reserved slug %q", slug)
	}
}
