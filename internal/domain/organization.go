package domain

import (
	"time"

	"github.com/google/uuid"
)

// Course belongs to exactly one department and blocks that department's deletion.
// ID is the caller-assigned course number.
type Course struct {
	ID           int64
	Title        string
	Credits      int
	DepartmentID int64
	CreatedAt    time.Time
}

// Instructor is the lookup entity a department may name as its administrator.
type Instructor struct {
	ID        int64
	LastName  string
	FirstName string
	HireDate  time.Time
	CreatedAt time.Time
}

// FullName returns "Last, First".
func (i Instructor) FullName() string {
	return i.LastName + ", " + i.FirstName
}

// AuditRecord logs a committed mutation on a domain entity.
type AuditRecord struct {
	ID         uuid.UUID
	EntityType EntityType
	EntityID   int64
	Action     AuditAction
	Version    int64
	RequestID  string
	Changes    map[string]any
	CreatedAt  time.Time
}
