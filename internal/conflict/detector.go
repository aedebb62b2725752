// Package conflict computes field-level diffs between a rejected write and
// the record as it is stored now. Everything here is pure: no I/O, no clock.
package conflict

import (
	"github.com/heartmarshall/records-backend/internal/domain"
)

// Diff compares every field present in attempted against current and returns
// the ones whose values differ, in a stable order (name, budget, start_date,
// administrator_id). Fields the writer did not try to change are never
// reported, even when they moved too.
//
// Budgets compare as decimals (350000 equals 350000.00), start dates compare
// by calendar date, and a cleared administrator is compared as nil.
func Diff(attempted domain.DepartmentPatch, current domain.Department) []domain.FieldConflict {
	var out []domain.FieldConflict

	if attempted.Name != nil && *attempted.Name != current.Name {
		out = append(out, domain.FieldConflict{
			Field:     domain.FieldName,
			Attempted: *attempted.Name,
			Current:   current.Name,
		})
	}

	if attempted.Budget != nil && !attempted.Budget.Equal(current.Budget) {
		out = append(out, domain.FieldConflict{
			Field:     domain.FieldBudget,
			Attempted: *attempted.Budget,
			Current:   current.Budget,
		})
	}

	if attempted.StartDate != nil && !domain.SameDate(*attempted.StartDate, current.StartDate) {
		out = append(out, domain.FieldConflict{
			Field:     domain.FieldStartDate,
			Attempted: domain.DateOnly(*attempted.StartDate),
			Current:   domain.DateOnly(current.StartDate),
		})
	}

	if attempted.TouchesAdministrator() {
		var want *int64
		if !attempted.ClearAdministrator {
			want = attempted.AdministratorID
		}
		if !sameRef(want, current.AdministratorID) {
			out = append(out, domain.FieldConflict{
				Field:     domain.FieldAdministratorID,
				Attempted: refValue(want),
				Current:   refValue(current.AdministratorID),
			})
		}
	}

	return out
}

// NewReport builds the report handed back for a write rejected at expectedVersion.
// For a delete, attempted is the zero patch and Fields is empty; the report
// still carries the current values and version for the writer to re-confirm.
func NewReport(expectedVersion int64, attempted domain.DepartmentPatch, current domain.Department) *domain.ConflictReport {
	fields := Diff(attempted, current)
	if fields == nil {
		fields = []domain.FieldConflict{}
	}

	return &domain.ConflictReport{
		EntityType:      domain.EntityTypeDepartment,
		ID:              current.ID,
		ExpectedVersion: expectedVersion,
		CurrentVersion:  current.Version,
		Attempted:       attempted,
		Current:         current,
		Fields:          fields,
	}
}

func sameRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// refValue unwraps a nullable reference; a NULL reference becomes a nil interface.
func refValue(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
