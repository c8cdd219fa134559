package model

import (
	"errors"
)

var ErrInvalidTenantStatus = errors.New("tenant status is not valid")

// TenantStatus represents the lifecycle status of a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusTrial     TenantStatus = "trial"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

var validTenantStatuses = map[TenantStatus]struct{}{
	TenantStatusActive:    {},
	TenantStatusTrial:     {},
	TenantStatusSuspended: {},
	TenantStatusCancelled: {},
}

// Validate validates the given status of the tenant.
// Returns an error if the status is invalid.
func (s TenantStatus) Validate() error {
	if _, ok := validTenantStatuses[s]; !ok {
		return ErrInvalidTenantStatus
	}

	return nil
}
