package manager

import "errors"

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantLookup   = errors.New("failed to look up tenant")
	ErrListTenants    = errors.New("failed to list tenants")
	ErrUpdateTenant   = errors.New("failed to update tenant")
	ErrSuspendTenant  = errors.New("failed to suspend tenant")

	ErrInvalidRegistration   = errors.New("registration request is invalid")
	ErrDuplicateRegistration = errors.New("a registration with this email is already pending")
	ErrAlreadyRegistered     = errors.New("this email already belongs to a registered tenant")
	ErrRegistrationNotFound  = errors.New("registration request not found")
	ErrRegistrationProcessed = errors.New("registration request was already processed")
	ErrCreateRegistration    = errors.New("failed to create registration request")
	ErrListRegistrations     = errors.New("failed to list registration requests")
	ErrUpdateRegistration    = errors.New("failed to update registration request")
	ErrApproveRegistration   = errors.New("failed to approve registration request")
	ErrRejectRegistration    = errors.New("failed to reject registration request")
	ErrSlugTaken             = errors.New("derived slug is already taken")
	ErrDefaultPlanMissing    = errors.New("default plan is not provisioned")
	ErrEnqueueProvisioning   = errors.New("failed to enqueue tenant provisioning")

	ErrServiceNotFound     = errors.New("service not found")
	ErrStaffNotFound       = errors.New("staff member not found")
	ErrInvalidBookingSlot  = errors.New("requested slot is invalid")
	ErrSlotTaken           = errors.New("requested slot is no longer available")
	ErrCreateAppointment   = errors.New("failed to create appointment")
	ErrListAppointments    = errors.New("failed to list appointments")
	ErrAvailabilityFailure = errors.New("failed to calculate availability")
)
