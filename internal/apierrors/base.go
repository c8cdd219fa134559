package apierrors

import (
	"net/http"

	"github.com/reasyhq/platform/internal/api/reasyapi"
)

const (
	InternalServerErr = "INTERNAL_SERVER_ERROR"
	JSONDecodeErr     = "JSON_DECODE_ERROR"
	ValidationErr     = "VALIDATION_ERROR"
	UnauthorizedErr   = "UNAUTHORIZED"
	ForbiddenErr      = "FORBIDDEN"
	RequiredHeaderErr = "REQUIRED_HEADER_ERROR"
)

func internalServerError() *APIError {
	return &APIError{
		Code:    InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}

func InternalServerErrorMessage() reasyapi.ErrorMessage {
	return internalServerError().ToErrorMessage()
}

func JSONDecodeErrorMessage() reasyapi.ErrorMessage {
	return reasyapi.ErrorMessage{Error: reasyapi.DetailedError{
		Code:    JSONDecodeErr,
		Message: "Can't decode JSON body",
		Status:  http.StatusBadRequest,
	}}
}

func ValidationErrorMessage(message string) reasyapi.ErrorMessage {
	return reasyapi.ErrorMessage{Error: reasyapi.DetailedError{
		Code:    ValidationErr,
		Message: message,
		Status:  http.StatusBadRequest,
	}}
}

func UnauthorizedErrorMessage() reasyapi.ErrorMessage {
	return reasyapi.ErrorMessage{Error: reasyapi.DetailedError{
		Code:    UnauthorizedErr,
		Message: "Authentication required",
		Status:  http.StatusUnauthorized,
	}}
}

func ForbiddenErrorMessage() reasyapi.ErrorMessage {
	return reasyapi.ErrorMessage{Error: reasyapi.DetailedError{
		Code:    ForbiddenErr,
		Message: "Access denied",
		Status:  http.StatusForbidden,
	}}
}

func RequiredHeaderError(message string) reasyapi.ErrorMessage {
	return reasyapi.ErrorMessage{Error: reasyapi.DetailedError{
		Code:    RequiredHeaderErr,
		Message: message,
		Status:  http.StatusBadRequest,
	}}
}
