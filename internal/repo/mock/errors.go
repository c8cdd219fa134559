package mock

import "errors"

var (
	ErrResourceIsNil      = errors.New("resource is nil")
	ErrMustPointerToSlice = errors.New("result must be a pointer to a slice")
	ErrMustBeSlice        = errors.New("result must point to a slice")
	ErrItemNotAssignable  = errors.New("stored item is not assignable to the result slice")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrUncomparableValue  = errors.New("value cannot be compared with this operator")
)
