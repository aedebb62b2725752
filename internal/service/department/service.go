// Package department implements the versioned read, update and delete of
// departments. Every mutation is a compare-and-swap on the stored version and
// reports its result as a domain.WriteResult rather than an error.
package department

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/records-backend/internal/domain"
)

type departmentRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	Create(ctx context.Context, d *domain.Department) (*domain.Department, error)
	CompareAndUpdate(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.SwapResult, error)
	CompareAndDelete(ctx context.Context, id, expectedVersion int64) (domain.SwapResult, error)
}

type dependentRepo interface {
	CountByDepartment(ctx context.Context, departmentID int64) (int, error)
	SampleByDepartment(ctx context.Context, departmentID int64, limit int) ([]domain.Dependent, error)
}

type auditLog interface {
	Log(ctx context.Context, record domain.AuditRecord) error
	WasDeleted(ctx context.Context, entityType domain.EntityType, entityID int64) (bool, error)
	GetByEntity(ctx context.Context, entityType domain.EntityType, entityID int64, limit int) ([]domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type outcomeRecorder interface {
	ObserveWrite(op string, outcome domain.Outcome)
}

const (
	opUpdate = "update"
	opDelete = "delete"

	// DefaultHistoryLimit is used when History is called without a limit.
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Service provides department operations.
type Service struct {
	departments departmentRepo
	audit       auditLog
	tx          txManager
	guard       *Guard
	metrics     outcomeRecorder
	log         *slog.Logger
}

// NewService creates a new Department service. metrics may be nil.
func NewService(
	log *slog.Logger,
	departments departmentRepo,
	dependents dependentRepo,
	audit auditLog,
	tx txManager,
	metrics outcomeRecorder,
	sampleSize int,
) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		departments: departments,
		audit:       audit,
		tx:          tx,
		guard:       NewGuard(dependents, sampleSize),
		metrics:     metrics,
		log:         log.With("service", "department"),
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveWrite(string, domain.Outcome) {}
