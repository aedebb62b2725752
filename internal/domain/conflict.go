package domain

// Field names used in patches, conflict reports and validation errors.
const (
	FieldName            = "name"
	FieldBudget          = "budget"
	FieldStartDate       = "start_date"
	FieldAdministratorID = "administrator_id"
)

// FieldConflict is one attempted field whose value differs from what is stored now.
type FieldConflict struct {
	Field     string
	Attempted any
	Current   any
}

// ConflictReport describes a write rejected because the version moved.
// It is built inside the failed call, handed to the caller once and never stored.
type ConflictReport struct {
	EntityType EntityType
	ID         int64

	// ExpectedVersion is the stale version the writer presented.
	ExpectedVersion int64
	// CurrentVersion is the version to present on a retry.
	CurrentVersion int64

	Attempted DepartmentPatch
	Current   Department
	Fields    []FieldConflict
}

// Field returns the conflict for the named field, if reported.
func (r *ConflictReport) Field(name string) (FieldConflict, bool) {
	for _, f := range r.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldConflict{}, false
}

// Dependent identifies one entity that references the record being deleted.
type Dependent struct {
	ID    int64
	Label string
}

// DependencyBlock describes dependents that prevent a delete.
// Sample holds at most a bounded number of dependents; Count is the full total.
type DependencyBlock struct {
	EntityType    EntityType
	ID            int64
	DependentType EntityType
	Count         int
	Sample        []Dependent
}
