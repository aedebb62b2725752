package department

import (
	"context"
	"sync"

	"github.com/heartmarshall/records-backend/internal/domain"
)

var (
	_ departmentRepo  = &departmentRepoMock{}
	_ dependentRepo   = &dependentRepoMock{}
	_ auditLog        = &auditLogMock{}
	_ txManager       = &txManagerMock{}
	_ outcomeRecorder = &outcomeRecorderMock{}
)

// ---------------------------------------------------------------------------
// departmentRepoMock
// ---------------------------------------------------------------------------

type departmentRepoMock struct {
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Department, error)
	ListFunc             func(ctx context.Context) ([]domain.Department, error)
	CreateFunc           func(ctx context.Context, d *domain.Department) (*domain.Department, error)
	CompareAndUpdateFunc func(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.SwapResult, error)
	CompareAndDeleteFunc func(ctx context.Context, id, expectedVersion int64) (domain.SwapResult, error)

	calls struct {
		GetByID          []struct{ ID int64 }
		List             []struct{}
		Create           []struct{ D *domain.Department }
		CompareAndUpdate []struct {
			ID              int64
			ExpectedVersion int64
			Patch           domain.DepartmentPatch
		}
		CompareAndDelete []struct {
			ID              int64
			ExpectedVersion int64
		}
	}
	lock sync.RWMutex
}

func (mock *departmentRepoMock) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	if mock.GetByIDFunc == nil {
		panic("departmentRepoMock.GetByIDFunc: method is nil but departmentRepo.GetByID was just called")
	}
	mock.lock.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct{ ID int64 }{id})
	mock.lock.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *departmentRepoMock) List(ctx context.Context) ([]domain.Department, error) {
	if mock.ListFunc == nil {
		panic("departmentRepoMock.ListFunc: method is nil but departmentRepo.List was just called")
	}
	mock.lock.Lock()
	mock.calls.List = append(mock.calls.List, struct{}{})
	mock.lock.Unlock()
	return mock.ListFunc(ctx)
}

func (mock *departmentRepoMock) Create(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	if mock.CreateFunc == nil {
		panic("departmentRepoMock.CreateFunc: method is nil but departmentRepo.Create was just called")
	}
	mock.lock.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ D *domain.Department }{d})
	mock.lock.Unlock()
	return mock.CreateFunc(ctx, d)
}

func (mock *departmentRepoMock) CompareAndUpdate(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.SwapResult, error) {
	if mock.CompareAndUpdateFunc == nil {
		panic("departmentRepoMock.CompareAndUpdateFunc: method is nil but departmentRepo.CompareAndUpdate was just called")
	}
	mock.lock.Lock()
	mock.calls.CompareAndUpdate = append(mock.calls.CompareAndUpdate, struct {
		ID              int64
		ExpectedVersion int64
		Patch           domain.DepartmentPatch
	}{id, expectedVersion, patch})
	mock.lock.Unlock()
	return mock.CompareAndUpdateFunc(ctx, id, expectedVersion, patch)
}

func (mock *departmentRepoMock) CompareAndUpdateCalls() []struct {
	ID              int64
	ExpectedVersion int64
	Patch           domain.DepartmentPatch
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.CompareAndUpdate
}

func (mock *departmentRepoMock) CompareAndDelete(ctx context.Context, id, expectedVersion int64) (domain.SwapResult, error) {
	if mock.CompareAndDeleteFunc == nil {
		panic("departmentRepoMock.CompareAndDeleteFunc: method is nil but departmentRepo.CompareAndDelete was just called")
	}
	mock.lock.Lock()
	mock.calls.CompareAndDelete = append(mock.calls.CompareAndDelete, struct {
		ID              int64
		ExpectedVersion int64
	}{id, expectedVersion})
	mock.lock.Unlock()
	return mock.CompareAndDeleteFunc(ctx, id, expectedVersion)
}

func (mock *departmentRepoMock) CompareAndDeleteCalls() []struct {
	ID              int64
	ExpectedVersion int64
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.CompareAndDelete
}

// ---------------------------------------------------------------------------
// dependentRepoMock
// ---------------------------------------------------------------------------

type dependentRepoMock struct {
	CountByDepartmentFunc  func(ctx context.Context, departmentID int64) (int, error)
	SampleByDepartmentFunc func(ctx context.Context, departmentID int64, limit int) ([]domain.Dependent, error)

	calls struct {
		CountByDepartment  []struct{ DepartmentID int64 }
		SampleByDepartment []struct {
			DepartmentID int64
			Limit        int
		}
	}
	lock sync.RWMutex
}

func (mock *dependentRepoMock) CountByDepartment(ctx context.Context, departmentID int64) (int, error) {
	if mock.CountByDepartmentFunc == nil {
		panic("dependentRepoMock.CountByDepartmentFunc: method is nil but dependentRepo.CountByDepartment was just called")
	}
	mock.lock.Lock()
	mock.calls.CountByDepartment = append(mock.calls.CountByDepartment, struct{ DepartmentID int64 }{departmentID})
	mock.lock.Unlock()
	return mock.CountByDepartmentFunc(ctx, departmentID)
}

func (mock *dependentRepoMock) CountByDepartmentCalls() []struct{ DepartmentID int64 } {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.CountByDepartment
}

func (mock *dependentRepoMock) SampleByDepartment(ctx context.Context, departmentID int64, limit int) ([]domain.Dependent, error) {
	if mock.SampleByDepartmentFunc == nil {
		panic("dependentRepoMock.SampleByDepartmentFunc: method is nil but dependentRepo.SampleByDepartment was just called")
	}
	mock.lock.Lock()
	mock.calls.SampleByDepartment = append(mock.calls.SampleByDepartment, struct {
		DepartmentID int64
		Limit        int
	}{departmentID, limit})
	mock.lock.Unlock()
	return mock.SampleByDepartmentFunc(ctx, departmentID, limit)
}

func (mock *dependentRepoMock) SampleByDepartmentCalls() []struct {
	DepartmentID int64
	Limit        int
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.SampleByDepartment
}

// ---------------------------------------------------------------------------
// auditLogMock
// ---------------------------------------------------------------------------

type auditLogMock struct {
	LogFunc         func(ctx context.Context, record domain.AuditRecord) error
	WasDeletedFunc  func(ctx context.Context, entityType domain.EntityType, entityID int64) (bool, error)
	GetByEntityFunc func(ctx context.Context, entityType domain.EntityType, entityID int64, limit int) ([]domain.AuditRecord, error)

	calls struct {
		Log         []struct{ Record domain.AuditRecord }
		WasDeleted  []struct{ EntityID int64 }
		GetByEntity []struct {
			EntityID int64
			Limit    int
		}
	}
	lock sync.RWMutex
}

func (mock *auditLogMock) Log(ctx context.Context, record domain.AuditRecord) error {
	mock.lock.Lock()
	mock.calls.Log = append(mock.calls.Log, struct{ Record domain.AuditRecord }{record})
	mock.lock.Unlock()
	if mock.LogFunc == nil {
		return nil
	}
	return mock.LogFunc(ctx, record)
}

func (mock *auditLogMock) LogCalls() []struct{ Record domain.AuditRecord } {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Log
}

func (mock *auditLogMock) WasDeleted(ctx context.Context, entityType domain.EntityType, entityID int64) (bool, error) {
	if mock.WasDeletedFunc == nil {
		panic("auditLogMock.WasDeletedFunc: method is nil but auditLog.WasDeleted was just called")
	}
	mock.lock.Lock()
	mock.calls.WasDeleted = append(mock.calls.WasDeleted, struct{ EntityID int64 }{entityID})
	mock.lock.Unlock()
	return mock.WasDeletedFunc(ctx, entityType, entityID)
}

func (mock *auditLogMock) WasDeletedCalls() []struct{ EntityID int64 } {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.WasDeleted
}

func (mock *auditLogMock) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID int64, limit int) ([]domain.AuditRecord, error) {
	if mock.GetByEntityFunc == nil {
		panic("auditLogMock.GetByEntityFunc: method is nil but auditLog.GetByEntity was just called")
	}
	mock.lock.Lock()
	mock.calls.GetByEntity = append(mock.calls.GetByEntity, struct {
		EntityID int64
		Limit    int
	}{entityID, limit})
	mock.lock.Unlock()
	return mock.GetByEntityFunc(ctx, entityType, entityID, limit)
}

func (mock *auditLogMock) GetByEntityCalls() []struct {
	EntityID int64
	Limit    int
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.GetByEntity
}

// ---------------------------------------------------------------------------
// txManagerMock runs fn directly unless RunInTxFunc is set.
// ---------------------------------------------------------------------------

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	mu    sync.Mutex
	count int
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	mock.mu.Lock()
	mock.count++
	mock.mu.Unlock()
	if mock.RunInTxFunc != nil {
		return mock.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

func (mock *txManagerMock) Calls() int {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.count
}

// ---------------------------------------------------------------------------
// outcomeRecorderMock
// ---------------------------------------------------------------------------

type outcomeRecorderMock struct {
	mu       sync.Mutex
	observed []string
}

func (mock *outcomeRecorderMock) ObserveWrite(op string, outcome domain.Outcome) {
	mock.mu.Lock()
	mock.observed = append(mock.observed, op+":"+outcome.String())
	mock.mu.Unlock()
}

func (mock *outcomeRecorderMock) Observed() []string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return append([]string(nil), mock.observed...)
}
