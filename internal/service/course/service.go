// Package course manages the courses that depend on departments. Removing or
// reassigning courses is how a blocked department delete is cleared.
package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

type courseRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Course, error)
	Create(ctx context.Context, c *domain.Course) (*domain.Course, error)
	Update(ctx context.Context, id int64, title *string, credits *int, departmentID *int64) (*domain.Course, error)
	Delete(ctx context.Context, id int64) error
}

type departmentReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides course operations.
type Service struct {
	courses     courseRepo
	departments departmentReader
	audit       auditLogger
	tx          txManager
	log         *slog.Logger
}

// NewService creates a new Course service.
func NewService(
	log *slog.Logger,
	courses courseRepo,
	departments departmentReader,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		courses:     courses,
		departments: departments,
		audit:       audit,
		tx:          tx,
		log:         log.With("service", "course"),
	}
}

// CreateCourse adds a course under an existing department.
func (s *Service) CreateCourse(ctx context.Context, input CreateInput) (*domain.Course, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Course
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireDepartment(txCtx, input.DepartmentID); err != nil {
			return err
		}

		var err error
		created, err = s.courses.Create(txCtx, &domain.Course{
			ID:           input.ID,
			Title:        strings.TrimSpace(input.Title),
			Credits:      input.Credits,
			DepartmentID: input.DepartmentID,
		})
		if err != nil {
			return fmt.Errorf("create course: %w", err)
		}

		return s.audit.Log(txCtx, domain.AuditRecord{
			EntityType: domain.EntityTypeCourse,
			EntityID:   created.ID,
			Action:     domain.AuditActionCreate,
			RequestID:  ctxutil.RequestIDFromCtx(ctx),
			Changes: map[string]any{
				"title":         created.Title,
				"credits":       created.Credits,
				"department_id": created.DepartmentID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "course created",
		slog.Int64("course_id", created.ID),
		slog.Int64("department_id", created.DepartmentID),
	)
	return created, nil
}

// ListByDepartment returns the courses of a department ordered by course number.
func (s *Service) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Course, error) {
	if departmentID <= 0 {
		return nil, domain.NewValidationError("department_id", "must be positive")
	}
	list, err := s.courses.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return list, nil
}

// UpdateCourse changes a course. Setting DepartmentID reassigns it, which
// releases its hold on the previous department.
func (s *Service) UpdateCourse(ctx context.Context, input UpdateInput) (*domain.Course, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var title *string
	if input.Title != nil {
		t := strings.TrimSpace(*input.Title)
		title = &t
	}

	var updated *domain.Course
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if input.DepartmentID != nil {
			if err := s.requireDepartment(txCtx, *input.DepartmentID); err != nil {
				return err
			}
		}

		var err error
		updated, err = s.courses.Update(txCtx, input.ID, title, input.Credits, input.DepartmentID)
		if err != nil {
			return fmt.Errorf("update course: %w", err)
		}

		changes := map[string]any{}
		if title != nil {
			changes["title"] = *title
		}
		if input.Credits != nil {
			changes["credits"] = *input.Credits
		}
		if input.DepartmentID != nil {
			changes["department_id"] = *input.DepartmentID
		}

		return s.audit.Log(txCtx, domain.AuditRecord{
			EntityType: domain.EntityTypeCourse,
			EntityID:   input.ID,
			Action:     domain.AuditActionUpdate,
			RequestID:  ctxutil.RequestIDFromCtx(ctx),
			Changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "course updated", slog.Int64("course_id", updated.ID))
	return updated, nil
}

// DeleteCourse removes a course. Returns domain.ErrNotFound if it does not exist.
func (s *Service) DeleteCourse(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.NewValidationError("id", "must be positive")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.courses.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return s.audit.Log(txCtx, domain.AuditRecord{
			EntityType: domain.EntityTypeCourse,
			EntityID:   id,
			Action:     domain.AuditActionDelete,
			RequestID:  ctxutil.RequestIDFromCtx(ctx),
		})
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "course deleted", slog.Int64("course_id", id))
	return nil
}

// requireDepartment turns a missing department into a field error so it is
// not confused with a missing course.
func (s *Service) requireDepartment(ctx context.Context, id int64) error {
	if _, err := s.departments.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("department_id", "department does not exist")
		}
		return fmt.Errorf("check department: %w", err)
	}
	return nil
}
