package datamanager

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting
)

var (
	// ErrNotFound reports a missing user or destination
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken reports a registration with an existing username
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials reports an unknown username or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or empty required field
type ValidationError struct {
	Field   string // Name of the offending field
	Message string // Human readable reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps a failure of the underlying store
type StorageError struct {
	Op  string // Operation that failed
	Err error  // Underlying cause
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// missingField builds the validation error for an absent required field
func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "missing required field"}
}

// storageErr wraps err as a StorageError for op
func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
