package department

import (
	"context"
	"fmt"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// DefaultSampleSize is how many blocking courses a DependencyBlock lists
// when no size is configured.
const DefaultSampleSize = 5

// Guard refuses the deletion of departments that courses still reference.
// It is a pre-check: the courses foreign key remains the final authority, so
// the guard must run in the same transaction as the conditional delete.
type Guard struct {
	dependents dependentRepo
	sampleSize int
}

// NewGuard creates a Guard listing at most sampleSize dependents per block.
func NewGuard(dependents dependentRepo, sampleSize int) *Guard {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Guard{dependents: dependents, sampleSize: sampleSize}
}

// CanDelete returns nil when no course references the department, otherwise
// a DependencyBlock with the full count and a bounded sample.
func (g *Guard) CanDelete(ctx context.Context, departmentID int64) (*domain.DependencyBlock, error) {
	count, err := g.dependents.CountByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("guard count: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	sample, err := g.dependents.SampleByDepartment(ctx, departmentID, g.sampleSize)
	if err != nil {
		return nil, fmt.Errorf("guard sample: %w", err)
	}

	return &domain.DependencyBlock{
		EntityType:    domain.EntityTypeDepartment,
		ID:            departmentID,
		DependentType: domain.EntityTypeCourse,
		Count:         count,
		Sample:        sample,
	}, nil
}
