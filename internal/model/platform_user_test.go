package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasyhq/platform/internal/model"
)

func TestPlatformRoleValidate(t *testing.T) {
	tests := map[string]struct {
		role      model.PlatformRole
		expectErr bool
	}{
		"super admin": {role: model.RoleSuperAdmin},
		"admin":       {role: model.RoleAdmin},
		"support":     {role: model.RoleSupport},
		"developer":   {role: model.RoleDeveloper},
		"empty":       {role: "", expectErr: true},
		"unknown":     {role: "owner", expectErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.role.Validate()
			if test.expectErr {
				assert.Equal(t, model.ErrInvalidPlatformRole, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanAccessAdminPortal(t *testing.T) {
	tests := map[string]struct {
		role     model.PlatformRole
		isActive bool
		allowed  bool
	}{
		"active super admin": {role: model.RoleSuperAdmin, isActive: true, allowed: true},
		"active admin":       {role: model.RoleAdmin, isActive: true, allowed: true},
		"inactive admin":     {role: model.RoleAdmin, isActive: false, allowed: false},
		"active support":     {role: model.RoleSupport, isActive: true, allowed: false},
		"active developer":   {role: model.RoleDeveloper, isActive: true, allowed: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			user := &model.PlatformUser{Role: test.role, IsActive: test.isActive}
			assert.Equal(t, test.allowed, user.CanAccessAdminPortal())
		})
	}
}
