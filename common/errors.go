package common

import (
	"errors"
	"strings"
)

var (

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// service specific errors
	ErrSessionExists  = errors.New("session already exists")
	ErrExportDisabled = errors.New("export is not configured")

	// input errors
	ErrValidation = errors.New("validation error")
)

// ValidationError lists the request fields that were missing or invalid,
// using their JSON names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "The following fields are required: " + strings.Join(e.Fields, ",")
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
