package department

import (
	"context"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// Update is UpdateDepartment with positional arguments, so that Service can
// drive an edit session in-process.
func (s *Service) Update(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.WriteResult, error) {
	return s.UpdateDepartment(ctx, UpdateInput{ID: id, ExpectedVersion: expectedVersion, Patch: patch})
}

// Delete is DeleteDepartment with positional arguments.
func (s *Service) Delete(ctx context.Context, id, expectedVersion int64) (domain.WriteResult, error) {
	return s.DeleteDepartment(ctx, DeleteInput{ID: id, ExpectedVersion: expectedVersion})
}
