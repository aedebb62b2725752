package domain

// EntityType identifies the kind of domain entity (used in audit logs and reports).
type EntityType string

const (
	EntityTypeDepartment EntityType = "DEPARTMENT"
	EntityTypeCourse     EntityType = "COURSE"
	EntityTypeInstructor EntityType = "INSTRUCTOR"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeDepartment, EntityTypeCourse, EntityTypeInstructor:
		return true
	}
	return false
}

// AuditAction represents the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete:
		return true
	}
	return false
}

// Outcome is the modeled result of a versioned write.
type Outcome int

const (
	OutcomeCommitted Outcome = iota + 1
	OutcomeConflict
	OutcomeGone
	OutcomeNotFound
	OutcomeBlocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeConflict:
		return "conflict"
	case OutcomeGone:
		return "gone"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeBlocked:
		return "blocked"
	}
	return "unknown"
}

func (o Outcome) IsValid() bool {
	return o >= OutcomeCommitted && o <= OutcomeBlocked
}
