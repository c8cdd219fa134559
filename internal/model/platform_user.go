package model

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidPlatformRole = errors.New("platform user role is not valid")

// PlatformRole is the role of a platform operator, not of a tenant's staff.
type PlatformRole string

const (
	RoleSuperAdmin PlatformRole = "super_admin"
	RoleAdmin      PlatformRole = "admin"
	RoleSupport    PlatformRole = "support"
	RoleDeveloper  PlatformRole = "developer"
)

var validPlatformRoles = map[PlatformRole]struct{}{
	RoleSuperAdmin: {},
	RoleAdmin:      {},
	RoleSupport:    {},
	RoleDeveloper:  {},
}

// AdminRoles are the only roles allowed through the admin gate.
var AdminRoles = map[PlatformRole]struct{}{
	RoleSuperAdmin: {},
	RoleAdmin:      {},
}

func (r PlatformRole) Validate() error {
	if _, ok := validPlatformRoles[r]; !ok {
		return ErrInvalidPlatformRole
	}

	return nil
}

// IsAdmin reports whether the role grants access to the platform portal.
func (r PlatformRole) IsAdmin() bool {
	_, ok := AdminRoles[r]
	return ok
}

type PlatformUser struct {
	AutoTimeModel

	ID        uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Email     string       `gorm:"type:varchar(255);not null;unique"`
	FirstName string       `gorm:"type:varchar(255);not null"`
	LastName  string       `gorm:"type:varchar(255);not null"`
	Role      PlatformRole `gorm:"type:varchar(50);not null"`
	IsActive  bool         `gorm:"not null;default:false"`
}

func (u PlatformUser) TableName() string   { return "public.platform_users" }
func (u PlatformUser) IsSharedModel() bool { return true }

// CanAccessAdminPortal is the gate decision rule: active AND an admin role.
func (u *PlatformUser) CanAccessAdminPortal() bool {
	return u.IsActive && u.Role.IsAdmin()
}
