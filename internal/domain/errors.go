package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")

	// ErrGone means the record existed when the write was attempted but was
	// deleted by another writer. There is nothing left to merge against.
	ErrGone = errors.New("deleted by another writer")

	// ErrBlocked means a delete was refused because dependents still reference the record.
	ErrBlocked = errors.New("blocked by dependents")

	// ErrReferenced is returned by repositories when the store's own
	// referential-integrity check rejects a delete.
	ErrReferenced = errors.New("still referenced")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ConflictError carries the report of a write rejected because the version moved.
type ConflictError struct {
	Report *ConflictReport
}

func (e *ConflictError) Error() string {
	if e.Report == nil {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s %d: version moved to %d (%d conflicting fields)",
		e.Report.EntityType, e.Report.ID, e.Report.CurrentVersion, len(e.Report.Fields))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// BlockedError carries the dependents that prevented a delete.
type BlockedError struct {
	Block *DependencyBlock
}

func (e *BlockedError) Error() string {
	if e.Block == nil {
		return ErrBlocked.Error()
	}
	return fmt.Sprintf("%s %d: %d dependent %s",
		e.Block.EntityType, e.Block.ID, e.Block.Count, e.Block.DependentType)
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }
