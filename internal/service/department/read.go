package department

import (
	"context"
	"fmt"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// GetDepartment returns the current record and its version.
// Returns domain.ErrNotFound if it does not exist. Reads have no side effects.
func (s *Service) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive")
	}

	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

// ListDepartments returns all departments ordered by name.
func (s *Service) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	list, err := s.departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return list, nil
}

// History returns the audit trail of a department, newest first. It also
// works for deleted departments as long as their records were not pruned.
func (s *Service) History(ctx context.Context, id int64, limit int) ([]domain.AuditRecord, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return nil, domain.NewValidationError("limit", "max 500")
	}

	records, err := s.audit.GetByEntity(ctx, domain.EntityTypeDepartment, id, limit)
	if err != nil {
		return nil, fmt.Errorf("department history: %w", err)
	}
	return records, nil
}
