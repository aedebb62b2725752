package department

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

// DeleteDepartment removes the department if no course references it and
// its stored version still equals input.ExpectedVersion.
//
// The guard and the conditional delete run in one transaction. If a course
// slips in between the two, the foreign key refuses the delete and the result
// is still Blocked. A Blocked delete is never retried here; the caller must
// remove or reassign the courses and issue the delete again.
func (s *Service) DeleteDepartment(ctx context.Context, input DeleteInput) (domain.WriteResult, error) {
	if err := input.Validate(); err != nil {
		return domain.WriteResult{}, err
	}

	var result domain.WriteResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		block, err := s.guard.CanDelete(txCtx, input.ID)
		if err != nil {
			return err
		}
		if block != nil {
			result = domain.WriteResult{Outcome: domain.OutcomeBlocked, ID: input.ID, Block: block}
			return nil
		}

		swap, err := s.departments.CompareAndDelete(txCtx, input.ID, input.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("compare and delete: %w", err)
		}

		if !swap.Swapped {
			result, err = s.missed(txCtx, input.ID, input.ExpectedVersion, domain.DepartmentPatch{}, swap.Current)
			return err
		}

		result = domain.WriteResult{Outcome: domain.OutcomeCommitted, ID: input.ID}

		return s.audit.Log(txCtx, domain.AuditRecord{
			EntityType: domain.EntityTypeDepartment,
			EntityID:   input.ID,
			Action:     domain.AuditActionDelete,
			Version:    swap.Current.Version,
			RequestID:  ctxutil.RequestIDFromCtx(ctx),
			Changes:    snapshotChanges(*swap.Current),
		})
	})

	if errors.Is(err, domain.ErrReferenced) {
		// The transaction is aborted; count again outside it.
		result, err = s.refused(ctx, input.ID)
	}
	if err != nil {
		return domain.WriteResult{}, err
	}

	s.metrics.ObserveWrite(opDelete, result.Outcome)
	s.logOutcome(ctx, opDelete, input.ExpectedVersion, result)

	return result, nil
}

// refused builds the Blocked result after the store's foreign key rejected a
// delete the guard had allowed. The refusal proves at least one dependent.
func (s *Service) refused(ctx context.Context, id int64) (domain.WriteResult, error) {
	block, err := s.guard.CanDelete(ctx, id)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if block == nil {
		block = &domain.DependencyBlock{
			EntityType:    domain.EntityTypeDepartment,
			ID:            id,
			DependentType: domain.EntityTypeCourse,
			Count:         1,
			Sample:        []domain.Dependent{},
		}
	}
	return domain.WriteResult{Outcome: domain.OutcomeBlocked, ID: id, Block: block}, nil
}
