package course

import (
	"context"
	"sync"

	"github.com/heartmarshall/records-backend/internal/domain"
)

var (
	_ courseRepo       = &courseRepoMock{}
	_ departmentReader = &departmentReaderMock{}
	_ auditLogger      = &auditLoggerMock{}
	_ txManager        = &txManagerMock{}
)

type courseRepoMock struct {
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Course, error)
	ListByDepartmentFunc func(ctx context.Context, departmentID int64) ([]domain.Course, error)
	CreateFunc           func(ctx context.Context, c *domain.Course) (*domain.Course, error)
	UpdateFunc           func(ctx context.Context, id int64, title *string, credits *int, departmentID *int64) (*domain.Course, error)
	DeleteFunc           func(ctx context.Context, id int64) error

	lock  sync.Mutex
	calls struct {
		Create []*domain.Course
		Update []struct {
			ID           int64
			Title        *string
			Credits      *int
			DepartmentID *int64
		}
		Delete []int64
	}
}

func (mock *courseRepoMock) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	if mock.GetByIDFunc == nil {
		panic("courseRepoMock.GetByIDFunc: method is nil but courseRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *courseRepoMock) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Course, error) {
	if mock.ListByDepartmentFunc == nil {
		panic("courseRepoMock.ListByDepartmentFunc: method is nil but courseRepo.ListByDepartment was just called")
	}
	return mock.ListByDepartmentFunc(ctx, departmentID)
}

func (mock *courseRepoMock) Create(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	if mock.CreateFunc == nil {
		panic("courseRepoMock.CreateFunc: method is nil but courseRepo.Create was just called")
	}
	mock.lock.Lock()
	mock.calls.Create = append(mock.calls.Create, c)
	mock.lock.Unlock()
	return mock.CreateFunc(ctx, c)
}

func (mock *courseRepoMock) Update(ctx context.Context, id int64, title *string, credits *int, departmentID *int64) (*domain.Course, error) {
	if mock.UpdateFunc == nil {
		panic("courseRepoMock.UpdateFunc: method is nil but courseRepo.Update was just called")
	}
	mock.lock.Lock()
	mock.calls.Update = append(mock.calls.Update, struct {
		ID           int64
		Title        *string
		Credits      *int
		DepartmentID *int64
	}{id, title, credits, departmentID})
	mock.lock.Unlock()
	return mock.UpdateFunc(ctx, id, title, credits, departmentID)
}

func (mock *courseRepoMock) Delete(ctx context.Context, id int64) error {
	if mock.DeleteFunc == nil {
		panic("courseRepoMock.DeleteFunc: method is nil but courseRepo.Delete was just called")
	}
	mock.lock.Lock()
	mock.calls.Delete = append(mock.calls.Delete, id)
	mock.lock.Unlock()
	return mock.DeleteFunc(ctx, id)
}

type departmentReaderMock struct {
	GetByIDFunc func(ctx context.Context, id int64) (*domain.Department, error)
}

func (mock *departmentReaderMock) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	if mock.GetByIDFunc == nil {
		panic("departmentReaderMock.GetByIDFunc: method is nil but departmentReader.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

type auditLoggerMock struct {
	LogFunc func(ctx context.Context, record domain.AuditRecord) error

	lock    sync.Mutex
	records []domain.AuditRecord
}

func (mock *auditLoggerMock) Log(ctx context.Context, record domain.AuditRecord) error {
	mock.lock.Lock()
	mock.records = append(mock.records, record)
	mock.lock.Unlock()
	if mock.LogFunc == nil {
		return nil
	}
	return mock.LogFunc(ctx, record)
}

func (mock *auditLoggerMock) LogCalls() []domain.AuditRecord {
	mock.lock.Lock()
	defer mock.lock.Unlock()
	return append([]domain.AuditRecord(nil), mock.records...)
}

type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
