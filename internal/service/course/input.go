package course

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/records-backend/internal/domain"
)

const (
	MaxTitleLength = 50
	MaxCredits     = 5
)

// CreateInput holds the parameters for creating a course. ID is the
// caller-assigned course number.
type CreateInput struct {
	ID           int64
	Title        string
	Credits      int
	DepartmentID int64
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	errs = validateTitle(errs, i.Title)
	errs = validateCredits(errs, i.Credits)
	if i.DepartmentID <= 0 {
		errs = append(errs, domain.FieldError{Field: "department_id", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds a partial course update. Nil fields are left untouched.
type UpdateInput struct {
	ID           int64
	Title        *string
	Credits      *int
	DepartmentID *int64
}

// Validate checks all fields and collects all errors.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	if i.Title == nil && i.Credits == nil && i.DepartmentID == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field is required"})
	}
	if i.Title != nil {
		errs = validateTitle(errs, *i.Title)
	}
	if i.Credits != nil {
		errs = validateCredits(errs, *i.Credits)
	}
	if i.DepartmentID != nil && *i.DepartmentID <= 0 {
		errs = append(errs, domain.FieldError{Field: "department_id", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateTitle(errs []domain.FieldError, title string) []domain.FieldError {
	title = strings.TrimSpace(title)
	if title == "" {
		return append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return append(errs, domain.FieldError{Field: "title", Message: "max 50 characters"})
	}
	return errs
}

func validateCredits(errs []domain.FieldError, credits int) []domain.FieldError {
	if credits < 0 || credits > MaxCredits {
		return append(errs, domain.FieldError{Field: "credits", Message: "must be between 0 and 5"})
	}
	return errs
}
