package util

import (
	"errors"
	"fmt"
)

var (
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrDuplicateComplaint = errors.New("complaint id already exists")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrVersionConflict    = errors.New("complaint was modified concurrently")
	ErrAlreadyAssigned    = errors.New("complaint already assigned to a department")
	ErrUnknownDepartment  = errors.New("unknown department")
	ErrPermissionDenied   = errors.New("permission denied")
)

// ValidationError 校验失败，在变更前返回，由调用方决定如何展示
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
