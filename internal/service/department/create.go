package department

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

// CreateDepartment inserts a department at domain.InitialVersion.
func (s *Service) CreateDepartment(ctx context.Context, input CreateInput) (*domain.Department, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Department
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.departments.Create(txCtx, &domain.Department{
			Name:            strings.TrimSpace(input.Name),
			Budget:          input.Budget,
			StartDate:       domain.DateOnly(input.StartDate),
			AdministratorID: input.AdministratorID,
		})
		if err != nil {
			return fmt.Errorf("create department: %w", err)
		}

		return s.audit.Log(txCtx, domain.AuditRecord{
			EntityType: domain.EntityTypeDepartment,
			EntityID:   created.ID,
			Action:     domain.AuditActionCreate,
			Version:    created.Version,
			RequestID:  ctxutil.RequestIDFromCtx(ctx),
			Changes:    snapshotChanges(*created),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "department created",
		slog.Int64("department_id", created.ID),
		slog.String("name", created.Name),
	)

	return created, nil
}

// snapshotChanges renders every mutable field for the audit log.
func snapshotChanges(d domain.Department) map[string]any {
	return map[string]any{
		domain.FieldName:            d.Name,
		domain.FieldBudget:          d.Budget.String(),
		domain.FieldStartDate:       d.StartDate.Format("2006-01-02"),
		domain.FieldAdministratorID: d.AdministratorID,
	}
}
