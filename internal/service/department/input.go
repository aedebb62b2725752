package department

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/records-backend/internal/domain"
)

const (
	MaxNameLength = 50
)

var maxBudget = decimal.New(1, 15) // NUMERIC(19,4)

// CreateInput holds the parameters for creating a department.
type CreateInput struct {
	Name            string
	Budget          decimal.Decimal
	StartDate       time.Time
	AdministratorID *int64
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	errs = validateName(errs, i.Name)
	errs = validateBudget(errs, i.Budget)
	if i.StartDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: domain.FieldStartDate, Message: "required"})
	}
	if i.AdministratorID != nil && *i.AdministratorID <= 0 {
		errs = append(errs, domain.FieldError{Field: domain.FieldAdministratorID, Message: "must be positive"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds the parameters for a versioned update.
type UpdateInput struct {
	ID              int64
	ExpectedVersion int64
	Patch           domain.DepartmentPatch
}

// Validate checks all fields and collects all errors. A missing or
// non-positive expected version is a client error, never a conflict.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	errs = validateKey(errs, i.ID, i.ExpectedVersion)

	p := i.Patch
	if p.IsEmpty() {
		errs = append(errs, domain.FieldError{Field: "patch", Message: "at least one field is required"})
	}
	if p.Name != nil {
		errs = validateName(errs, *p.Name)
	}
	if p.Budget != nil {
		errs = validateBudget(errs, *p.Budget)
	}
	if p.StartDate != nil && p.StartDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: domain.FieldStartDate, Message: "must be a valid date"})
	}
	if p.ClearAdministrator && p.AdministratorID != nil {
		errs = append(errs, domain.FieldError{Field: domain.FieldAdministratorID, Message: "cannot set and clear at once"})
	} else if p.AdministratorID != nil && *p.AdministratorID <= 0 {
		errs = append(errs, domain.FieldError{Field: domain.FieldAdministratorID, Message: "must be positive"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// normalized returns the patch with the name trimmed.
func (i UpdateInput) normalized() domain.DepartmentPatch {
	p := i.Patch
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	if p.StartDate != nil {
		d := domain.DateOnly(*p.StartDate)
		p.StartDate = &d
	}
	return p
}

// DeleteInput holds the parameters for a versioned delete.
type DeleteInput struct {
	ID              int64
	ExpectedVersion int64
}

// Validate checks all fields and collects all errors.
func (i DeleteInput) Validate() error {
	if errs := validateKey(nil, i.ID, i.ExpectedVersion); len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateKey(errs []domain.FieldError, id, expectedVersion int64) []domain.FieldError {
	if id <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	if expectedVersion <= 0 {
		errs = append(errs, domain.FieldError{Field: "expected_version", Message: "required, must be positive"})
	}
	return errs
}

func validateName(errs []domain.FieldError, name string) []domain.FieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return append(errs, domain.FieldError{Field: domain.FieldName, Message: "required"})
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return append(errs, domain.FieldError{Field: domain.FieldName, Message: "max 50 characters"})
	}
	return errs
}

func validateBudget(errs []domain.FieldError, budget decimal.Decimal) []domain.FieldError {
	if budget.IsNegative() {
		return append(errs, domain.FieldError{Field: domain.FieldBudget, Message: "must not be negative"})
	}
	if budget.GreaterThanOrEqual(maxBudget) {
		return append(errs, domain.FieldError{Field: domain.FieldBudget, Message: "too large"})
	}
	if budget.Exponent() < -4 && !budget.Equal(budget.Truncate(4)) {
		return append(errs, domain.FieldError{Field: domain.FieldBudget, Message: "at most 4 decimal places"})
	}
	return errs
}
