package apierrors

import (
	"net/http"

	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/repo"
)

const (
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	UniqueError      = "UNIQUE_ERROR"
	BadRequest       = "BAD_REQUEST"
	Conflict         = "CONFLICT"
)

var defaultMapper = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "Requested resource not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrTenantNotFound},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "Tenant not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrRegistrationNotFound},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "Registration request not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrServiceNotFound},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "Service not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrStaffNotFound},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "Staff member not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{repo.ErrUniqueConstraint},
		ExposedError: &APIError{
			Code:    UniqueError,
			Message: "Resource with such ID already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDuplicateRegistration},
		ExposedError: &APIError{
			Code:    Conflict,
			Message: "A registration with this email is already pending",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrAlreadyRegistered},
		ExposedError: &APIError{
			Code:    Conflict,
			Message: "This email already belongs to a registered tenant",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrRegistrationProcessed},
		ExposedError: &APIError{
			Code:    Conflict,
			Message: "Registration request was already processed",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrSlugTaken},
		ExposedError: &APIError{
			Code:    Conflict,
			Message: "The business name maps to a subdomain that is already taken",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrInvalidRegistration},
		ExposedError: &APIError{
			Code:    BadRequest,
			Message: "Registration request is invalid",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrInvalidBookingSlot},
		ExposedError: &APIError{
			Code:    BadRequest,
			Message: "Requested slot is invalid",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrSlotTaken},
		ExposedError: &APIError{
			Code:    Conflict,
			Message: "Requested slot is no longer available",
			Status:  http.StatusConflict,
		},
	},
}
