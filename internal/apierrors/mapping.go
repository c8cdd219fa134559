package apierrors

import (
	"github.com/reasyhq/platform/internal/api/reasyapi"
	"github.com/reasyhq/platform/internal/errs"
)

type APIError struct {
	Code    string
	Message string
	Status  int
	Context *map[string]any
}

func (e *APIError) SetContext(context *map[string]any) {
	e.Context = context
}

func (e *APIError) DefaultError() *APIError {
	return internalServerError()
}

// ToErrorMessage renders the APIError as the wire error body.
func (e *APIError) ToErrorMessage() reasyapi.ErrorMessage {
	return reasyapi.ErrorMessage{Error: reasyapi.DetailedError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Context: e.Context,
	}}
}

// APIErrorMapper maps internal error chains onto client-facing errors.
var APIErrorMapper = errs.NewMapper(defaultMapper, nil)
