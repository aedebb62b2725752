package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialVersion is the version every department is created with.
const InitialVersion int64 = 1

// Department is the versioned record protected by optimistic concurrency.
// Version starts at InitialVersion and is bumped by exactly one on every
// committed update.
type Department struct {
	ID              int64
	Name            string
	Budget          decimal.Decimal
	StartDate       time.Time // calendar date, time-of-day is always zero UTC
	AdministratorID *int64
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DepartmentPatch lists the mutable fields a writer intends to change.
// A nil pointer leaves the field untouched. ClearAdministrator sets the
// administrator reference to NULL and is mutually exclusive with AdministratorID.
type DepartmentPatch struct {
	Name               *string
	Budget             *decimal.Decimal
	StartDate          *time.Time
	AdministratorID    *int64
	ClearAdministrator bool
}

// IsEmpty reports whether the patch changes nothing.
func (p DepartmentPatch) IsEmpty() bool {
	return p.Name == nil && p.Budget == nil && p.StartDate == nil &&
		p.AdministratorID == nil && !p.ClearAdministrator
}

// TouchesAdministrator reports whether the patch sets or clears the administrator.
func (p DepartmentPatch) TouchesAdministrator() bool {
	return p.AdministratorID != nil || p.ClearAdministrator
}

// Merge overlays other on top of p and returns the result. Fields set in
// other win; fields only set in p are kept.
func (p DepartmentPatch) Merge(other DepartmentPatch) DepartmentPatch {
	out := p
	if other.Name != nil {
		out.Name = other.Name
	}
	if other.Budget != nil {
		out.Budget = other.Budget
	}
	if other.StartDate != nil {
		out.StartDate = other.StartDate
	}
	if other.TouchesAdministrator() {
		out.AdministratorID = other.AdministratorID
		out.ClearAdministrator = other.ClearAdministrator
	}
	return out
}

// Apply returns a copy of d with the patch applied. Version and timestamps
// are not touched.
func (p DepartmentPatch) Apply(d Department) Department {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Budget != nil {
		d.Budget = *p.Budget
	}
	if p.StartDate != nil {
		d.StartDate = DateOnly(*p.StartDate)
	}
	if p.ClearAdministrator {
		d.AdministratorID = nil
	} else if p.AdministratorID != nil {
		id := *p.AdministratorID
		d.AdministratorID = &id
	}
	return d
}

// DateOnly truncates t to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
