// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrMissingField       = errors.New("field is required")
	ErrInvalidType        = errors.New("type must be income or expense")
	ErrInvalidCategory    = errors.New("category is not valid for type")
	ErrInvalidAmount      = errors.New("amount must be a positive number with at most two decimals")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrDescriptionTooLong = errors.New("description too long")

	ErrNotFound           = errors.New("transaction not found")
	ErrConflict           = errors.New("transaction was modified concurrently")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
)

// ValidationError reports which input field was rejected.
// It matches ErrValidation and its cause with errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
