// Package instructor manages instructors, the people a department can name
// as its administrator.
package instructor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/heartmarshall/records-backend/internal/domain"
)

const MaxNameLength = 50

type instructorRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Instructor, error)
	List(ctx context.Context) ([]domain.Instructor, error)
	Create(ctx context.Context, inst *domain.Instructor) (*domain.Instructor, error)
}

// Service provides instructor operations.
type Service struct {
	instructors instructorRepo
	log         *slog.Logger
}

// NewService creates a new Instructor service.
func NewService(log *slog.Logger, instructors instructorRepo) *Service {
	return &Service{
		instructors: instructors,
		log:         log.With("service", "instructor"),
	}
}

// CreateInput holds the parameters for creating an instructor.
type CreateInput struct {
	LastName  string
	FirstName string
	HireDate  time.Time
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	errs = validateName(errs, "last_name", i.LastName)
	errs = validateName(errs, "first_name", i.FirstName)
	if i.HireDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "hire_date", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateName(errs []domain.FieldError, field, v string) []domain.FieldError {
	v = strings.TrimSpace(v)
	if v == "" {
		return append(errs, domain.FieldError{Field: field, Message: "required"})
	}
	if utf8.RuneCountInString(v) > MaxNameLength {
		return append(errs, domain.FieldError{Field: field, Message: "max 50 characters"})
	}
	return errs
}

// CreateInstructor inserts an instructor.
func (s *Service) CreateInstructor(ctx context.Context, input CreateInput) (*domain.Instructor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.instructors.Create(ctx, &domain.Instructor{
		LastName:  strings.TrimSpace(input.LastName),
		FirstName: strings.TrimSpace(input.FirstName),
		HireDate:  domain.DateOnly(input.HireDate),
	})
	if err != nil {
		return nil, fmt.Errorf("create instructor: %w", err)
	}

	s.log.InfoContext(ctx, "instructor created", slog.Int64("instructor_id", created.ID))
	return created, nil
}

// GetInstructor returns an instructor. Returns domain.ErrNotFound if absent.
func (s *Service) GetInstructor(ctx context.Context, id int64) (*domain.Instructor, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive")
	}
	inst, err := s.instructors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	return inst, nil
}

// ListInstructors returns all instructors ordered by name.
func (s *Service) ListInstructors(ctx context.Context) ([]domain.Instructor, error) {
	list, err := s.instructors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return list, nil
}
