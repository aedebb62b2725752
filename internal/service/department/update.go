package department

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/records-backend/internal/conflict"
	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

// UpdateDepartment applies the patch if the stored version still equals
// input.ExpectedVersion.
//
// The returned error is reserved for validation failures and store failures.
// Every concurrency outcome is reported through WriteResult.Outcome:
// Committed carries the new record at version+1, Conflict carries the diff
// against the record as it is now, Gone and NotFound carry nothing.
func (s *Service) UpdateDepartment(ctx context.Context, input UpdateInput) (domain.WriteResult, error) {
	if err := input.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	patch := input.normalized()

	var result domain.WriteResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		swap, err := s.departments.CompareAndUpdate(txCtx, input.ID, input.ExpectedVersion, patch)
		if err != nil {
			return fmt.Errorf("compare and update: %w", err)
		}

		if !swap.Swapped {
			result, err = s.missed(txCtx, input.ID, input.ExpectedVersion, patch, swap.Current)
			return err
		}

		result = domain.WriteResult{Outcome: domain.OutcomeCommitted, ID: input.ID, Department: swap.Current}

		return s.audit.Log(txCtx, domain.AuditRecord{
			EntityType: domain.EntityTypeDepartment,
			EntityID:   input.ID,
			Action:     domain.AuditActionUpdate,
			Version:    swap.Current.Version,
			RequestID:  ctxutil.RequestIDFromCtx(ctx),
			Changes:    patchChanges(patch),
		})
	})
	if err != nil {
		return domain.WriteResult{}, err
	}

	s.metrics.ObserveWrite(opUpdate, result.Outcome)
	s.logOutcome(ctx, opUpdate, input.ExpectedVersion, result)

	return result, nil
}

// missed turns a version miss into Conflict, Gone or NotFound.
// current is the re-read record, nil when the row no longer exists.
func (s *Service) missed(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch, current *domain.Department) (domain.WriteResult, error) {
	if current != nil {
		return domain.WriteResult{
			Outcome:  domain.OutcomeConflict,
			ID:       id,
			Conflict: conflict.NewReport(expectedVersion, patch, *current),
		}, nil
	}

	deleted, err := s.audit.WasDeleted(ctx, domain.EntityTypeDepartment, id)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if deleted {
		return domain.WriteResult{Outcome: domain.OutcomeGone, ID: id}, nil
	}
	return domain.WriteResult{Outcome: domain.OutcomeNotFound, ID: id}, nil
}

func (s *Service) logOutcome(ctx context.Context, op string, expectedVersion int64, result domain.WriteResult) {
	attrs := []any{
		slog.String("op", op),
		slog.Int64("department_id", result.ID),
		slog.Int64("expected_version", expectedVersion),
		slog.String("outcome", result.Outcome.String()),
	}

	switch result.Outcome {
	case domain.OutcomeCommitted:
		if result.Department != nil {
			attrs = append(attrs, slog.Int64("version", result.Department.Version))
		}
		s.log.InfoContext(ctx, "department write committed", attrs...)
	case domain.OutcomeConflict:
		attrs = append(attrs,
			slog.Int64("current_version", result.Conflict.CurrentVersion),
			slog.Int("conflicting_fields", len(result.Conflict.Fields)),
		)
		s.log.InfoContext(ctx, "department write rejected", attrs...)
	case domain.OutcomeBlocked:
		attrs = append(attrs, slog.Int("dependents", result.Block.Count))
		s.log.InfoContext(ctx, "department write rejected", attrs...)
	default:
		s.log.InfoContext(ctx, "department write rejected", attrs...)
	}
}

// patchChanges renders the applied patch for the audit log.
func patchChanges(p domain.DepartmentPatch) map[string]any {
	changes := make(map[string]any)
	if p.Name != nil {
		changes[domain.FieldName] = *p.Name
	}
	if p.Budget != nil {
		changes[domain.FieldBudget] = p.Budget.String()
	}
	if p.StartDate != nil {
		changes[domain.FieldStartDate] = p.StartDate.Format("2006-01-02")
	}
	if p.ClearAdministrator {
		changes[domain.FieldAdministratorID] = nil
	} else if p.AdministratorID != nil {
		changes[domain.FieldAdministratorID] = *p.AdministratorID
	}
	return changes
}
