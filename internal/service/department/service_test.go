package department

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	departments *departmentRepoMock
	dependents  *dependentRepoMock
	audit       *auditLogMock
	tx          *txManagerMock
	metrics     *outcomeRecorderMock
	svc         *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		departments: &departmentRepoMock{},
		dependents: &dependentRepoMock{
			CountByDepartmentFunc: func(context.Context, int64) (int, error) { return 0, nil },
		},
		audit:   &auditLogMock{},
		tx:      &txManagerMock{},
		metrics: &outcomeRecorderMock{},
	}
	f.svc = NewService(slog.Default(), f.departments, f.dependents, f.audit, f.tx, f.metrics, 5)
	return f
}

func econ(version int64, budget string) *domain.Department {
	return &domain.Department{
		ID:        7,
		Name:      "Economics",
		Budget:    dec(budget),
		StartDate: time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC),
		Version:   version,
	}
}

// ---------------------------------------------------------------------------
// UpdateDepartment
// ---------------------------------------------------------------------------

func TestUpdateDepartment_Committed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CompareAndUpdateFunc = func(_ context.Context, id, v int64, p domain.DepartmentPatch) (domain.SwapResult, error) {
		return domain.SwapResult{Swapped: true, Current: econ(v+1, p.Budget.String())}, nil
	}

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	res, err := f.svc.UpdateDepartment(ctx, UpdateInput{ID: 7, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Budget: ptr(dec("400000"))}})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCommitted, res.Outcome)
	require.NotNil(t, res.Department)
	assert.Equal(t, int64(2), res.Department.Version)
	assert.NoError(t, res.Err())

	logs := f.audit.LogCalls()
	require.Len(t, logs, 1)
	rec := logs[0].Record
	assert.Equal(t, domain.AuditActionUpdate, rec.Action)
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, "400000", rec.Changes[domain.FieldBudget])
	assert.Equal(t, []string{"update:committed"}, f.metrics.Observed())
	assert.Equal(t, 1, f.tx.Calls())
}

func TestUpdateDepartment_Conflict(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	current := econ(2, "400000")
	f.departments.CompareAndUpdateFunc = func(context.Context, int64, int64, domain.DepartmentPatch) (domain.SwapResult, error) {
		return domain.SwapResult{Current: current}, nil
	}

	res, err := f.svc.UpdateDepartment(context.Background(), UpdateInput{
		ID: 7, ExpectedVersion: 1,
		Patch: domain.DepartmentPatch{Budget: ptr(dec("380000")), Name: ptr("Economics")},
	})
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeConflict, res.Outcome)
	report := res.Conflict
	require.NotNil(t, report)
	assert.Equal(t, int64(1), report.ExpectedVersion)
	assert.Equal(t, int64(2), report.CurrentVersion)
	require.Len(t, report.Fields, 1)
	assert.Equal(t, domain.FieldBudget, report.Fields[0].Field)
	assert.Empty(t, f.audit.LogCalls(), "a rejected write must not be audited")

	var ce *domain.ConflictError
	require.ErrorAs(t, res.Err(), &ce)
	assert.ErrorIs(t, res.Err(), domain.ErrConflict)
}

func TestUpdateDepartment_GoneVersusNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		deleted bool
		want    domain.Outcome
		wantErr error
	}{
		{"deleted by another writer", true, domain.OutcomeGone, domain.ErrGone},
		{"never existed", false, domain.OutcomeNotFound, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			f.departments.CompareAndUpdateFunc = func(context.Context, int64, int64, domain.DepartmentPatch) (domain.SwapResult, error) {
				return domain.SwapResult{}, nil
			}
			f.audit.WasDeletedFunc = func(_ context.Context, et domain.EntityType, id int64) (bool, error) {
				assert.Equal(t, domain.EntityTypeDepartment, et)
				return tt.deleted, nil
			}

			res, err := f.svc.UpdateDepartment(context.Background(), UpdateInput{ID: 7, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Name: ptr("X")}})
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Outcome)
			assert.Nil(t, res.Conflict, "no diff is fabricated against a missing record")
			assert.ErrorIs(t, res.Err(), tt.wantErr)
		})
	}
}

func TestUpdateDepartment_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input UpdateInput
		field string
	}{
		{"missing version", UpdateInput{ID: 1, Patch: domain.DepartmentPatch{Name: ptr("x")}}, "expected_version"},
		{"negative version", UpdateInput{ID: 1, ExpectedVersion: -1, Patch: domain.DepartmentPatch{Name: ptr("x")}}, "expected_version"},
		{"bad id", UpdateInput{ExpectedVersion: 1, Patch: domain.DepartmentPatch{Name: ptr("x")}}, "id"},
		{"empty patch", UpdateInput{ID: 1, ExpectedVersion: 1}, "patch"},
		{"blank name", UpdateInput{ID: 1, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Name: ptr("   ")}}, domain.FieldName},
		{"long name", UpdateInput{ID: 1, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Name: ptr(strings.Repeat("a", 51))}}, domain.FieldName},
		{"negative budget", UpdateInput{ID: 1, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Budget: ptr(dec("-1"))}}, domain.FieldBudget},
		{"too precise budget", UpdateInput{ID: 1, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Budget: ptr(dec("1.00001"))}}, domain.FieldBudget},
		{"set and clear admin", UpdateInput{ID: 1, ExpectedVersion: 1, Patch: domain.DepartmentPatch{AdministratorID: ptr(int64(3)), ClearAdministrator: true}}, domain.FieldAdministratorID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			_, err := f.svc.UpdateDepartment(context.Background(), tt.input)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Empty(t, f.departments.CompareAndUpdateCalls(), "validation must precede any store call")
			assert.Zero(t, f.tx.Calls())
		})
	}
}

func TestUpdateDepartment_NormalizesPatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var got domain.DepartmentPatch
	f.departments.CompareAndUpdateFunc = func(_ context.Context, _, v int64, p domain.DepartmentPatch) (domain.SwapResult, error) {
		got = p
		return domain.SwapResult{Swapped: true, Current: econ(v+1, "1")}, nil
	}

	_, err := f.svc.UpdateDepartment(context.Background(), UpdateInput{ID: 7, ExpectedVersion: 3, Patch: domain.DepartmentPatch{
		Name:      ptr("  Econ  "),
		StartDate: ptr(time.Date(2020, 1, 2, 13, 45, 0, 0, time.UTC)),
	}})
	require.NoError(t, err)

	assert.Equal(t, "Econ", *got.Name)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), *got.StartDate)
}

func TestUpdateDepartment_StoreError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	boom := errors.New("connection reset")
	f.departments.CompareAndUpdateFunc = func(context.Context, int64, int64, domain.DepartmentPatch) (domain.SwapResult, error) {
		return domain.SwapResult{}, boom
	}

	_, err := f.svc.UpdateDepartment(context.Background(), UpdateInput{ID: 7, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Name: ptr("x")}})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.metrics.Observed())
}

func TestUpdateDepartment_AuditFailureAborts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CompareAndUpdateFunc = func(_ context.Context, _, v int64, _ domain.DepartmentPatch) (domain.SwapResult, error) {
		return domain.SwapResult{Swapped: true, Current: econ(v+1, "1")}, nil
	}
	auditErr := errors.New("audit down")
	f.audit.LogFunc = func(context.Context, domain.AuditRecord) error { return auditErr }

	_, err := f.svc.UpdateDepartment(context.Background(), UpdateInput{ID: 7, ExpectedVersion: 1, Patch: domain.DepartmentPatch{Name: ptr("x")}})
	assert.ErrorIs(t, err, auditErr)
}

// ---------------------------------------------------------------------------
// DeleteDepartment
// ---------------------------------------------------------------------------

func TestDeleteDepartment_Committed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CompareAndDeleteFunc = func(_ context.Context, _, v int64) (domain.SwapResult, error) {
		return domain.SwapResult{Swapped: true, Current: econ(v, "10")}, nil
	}

	res, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7, ExpectedVersion: 4})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCommitted, res.Outcome)
	logs := f.audit.LogCalls()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionDelete, logs[0].Record.Action)
	assert.Equal(t, int64(4), logs[0].Record.Version)
	assert.Equal(t, []string{"delete:committed"}, f.metrics.Observed())
}

func TestDeleteDepartment_Blocked(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.dependents.CountByDepartmentFunc = func(context.Context, int64) (int, error) { return 12, nil }
	f.dependents.SampleByDepartmentFunc = func(_ context.Context, _ int64, limit int) ([]domain.Dependent, error) {
		out := make([]domain.Dependent, limit)
		for i := range out {
			out[i] = domain.Dependent{ID: int64(1000 + i), Label: fmt.Sprintf("%d Course", 1000+i)}
		}
		return out, nil
	}

	res, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7, ExpectedVersion: 1})
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeBlocked, res.Outcome)
	assert.Equal(t, 12, res.Block.Count)
	assert.Len(t, res.Block.Sample, 5)
	assert.Equal(t, domain.EntityTypeCourse, res.Block.DependentType)
	assert.Empty(t, f.departments.CompareAndDeleteCalls(), "blocked delete performs no write")

	var be *domain.BlockedError
	require.ErrorAs(t, res.Err(), &be)
	assert.Equal(t, 12, be.Block.Count)
}

func TestDeleteDepartment_StaleVersion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CompareAndDeleteFunc = func(context.Context, int64, int64) (domain.SwapResult, error) {
		return domain.SwapResult{Current: econ(5, "10")}, nil
	}

	res, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7, ExpectedVersion: 4})
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeConflict, res.Outcome)
	assert.Empty(t, res.Conflict.Fields)
	assert.NotNil(t, res.Conflict.Fields, "delete reports an empty, not absent, diff")
	assert.Equal(t, int64(5), res.Conflict.CurrentVersion)
	assert.Equal(t, "Economics", res.Conflict.Current.Name)
}

func TestDeleteDepartment_Gone(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CompareAndDeleteFunc = func(context.Context, int64, int64) (domain.SwapResult, error) {
		return domain.SwapResult{}, nil
	}
	f.audit.WasDeletedFunc = func(context.Context, domain.EntityType, int64) (bool, error) { return true, nil }

	res, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7, ExpectedVersion: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeGone, res.Outcome)
}

// The foreign key refuses a delete the guard allowed: the result is Blocked,
// counted again after the transaction was rolled back.
func TestDeleteDepartment_ForeignKeyRace(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var counts int
	f.dependents.CountByDepartmentFunc = func(context.Context, int64) (int, error) {
		counts++
		if counts == 1 {
			return 0, nil
		}
		return 1, nil
	}
	f.dependents.SampleByDepartmentFunc = func(context.Context, int64, int) ([]domain.Dependent, error) {
		return []domain.Dependent{{ID: 4022, Label: "4022 Microeconomics"}}, nil
	}
	f.departments.CompareAndDeleteFunc = func(context.Context, int64, int64) (domain.SwapResult, error) {
		return domain.SwapResult{}, fmt.Errorf("department 7: %w", domain.ErrReferenced)
	}

	res, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7, ExpectedVersion: 1})
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeBlocked, res.Outcome)
	assert.Equal(t, 1, res.Block.Count)
	assert.Equal(t, "4022 Microeconomics", res.Block.Sample[0].Label)
	assert.Equal(t, 2, counts)
}

func TestDeleteDepartment_ForeignKeyRace_DependentsVanished(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CompareAndDeleteFunc = func(context.Context, int64, int64) (domain.SwapResult, error) {
		return domain.SwapResult{}, domain.ErrReferenced
	}

	res, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7, ExpectedVersion: 1})
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeBlocked, res.Outcome)
	assert.Equal(t, 1, res.Block.Count)
	assert.NotNil(t, res.Block.Sample)
}

func TestDeleteDepartment_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.DeleteDepartment(context.Background(), DeleteInput{ID: 7})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.tx.Calls())
}

// ---------------------------------------------------------------------------
// Guard
// ---------------------------------------------------------------------------

func TestGuard_CanDelete_Allowed(t *testing.T) {
	t.Parallel()

	deps := &dependentRepoMock{
		CountByDepartmentFunc: func(context.Context, int64) (int, error) { return 0, nil },
	}
	block, err := NewGuard(deps, 5).CanDelete(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, block)
	assert.Empty(t, deps.SampleByDepartmentCalls(), "no sample when nothing blocks")
}

func TestGuard_DefaultSampleSize(t *testing.T) {
	t.Parallel()

	deps := &dependentRepoMock{
		CountByDepartmentFunc:  func(context.Context, int64) (int, error) { return 9, nil },
		SampleByDepartmentFunc: func(context.Context, int64, int) ([]domain.Dependent, error) { return nil, nil },
	}
	_, err := NewGuard(deps, 0).CanDelete(context.Background(), 3)
	require.NoError(t, err)

	calls := deps.SampleByDepartmentCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultSampleSize, calls[0].Limit)
}

func TestGuard_CountError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	deps := &dependentRepoMock{
		CountByDepartmentFunc: func(context.Context, int64) (int, error) { return 0, boom },
	}
	_, err := NewGuard(deps, 5).CanDelete(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestGetDepartment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.GetByIDFunc = func(_ context.Context, id int64) (*domain.Department, error) {
		if id == 7 {
			return econ(3, "1"), nil
		}
		return nil, fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
	}

	d, err := f.svc.GetDepartment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.Version)

	_, err = f.svc.GetDepartment(context.Background(), 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetDepartment(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHistory_Limits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.audit.GetByEntityFunc = func(context.Context, domain.EntityType, int64, int) ([]domain.AuditRecord, error) {
		return []domain.AuditRecord{}, nil
	}

	_, err := f.svc.History(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, f.audit.GetByEntityCalls()[0].Limit)

	_, err = f.svc.History(context.Background(), 7, MaxHistoryLimit+1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateDepartment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.departments.CreateFunc = func(_ context.Context, d *domain.Department) (*domain.Department, error) {
		out := *d
		out.ID = 11
		out.Version = domain.InitialVersion
		return &out, nil
	}

	created, err := f.svc.CreateDepartment(context.Background(), CreateInput{
		Name:      " Engineering ",
		Budget:    dec("350000"),
		StartDate: time.Date(2007, 9, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "Engineering", created.Name)
	assert.Equal(t, domain.InitialVersion, created.Version)
	logs := f.audit.LogCalls()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionCreate, logs[0].Record.Action)
	assert.Equal(t, "2007-09-01", logs[0].Record.Changes[domain.FieldStartDate])

	_, err = f.svc.CreateDepartment(context.Background(), CreateInput{Budget: dec("-1")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

// ---------------------------------------------------------------------------
// End-to-end against an in-memory compare-and-swap store
// ---------------------------------------------------------------------------

// memStore is a departmentRepo with the same swap semantics as the SQL one.
type memStore struct {
	mu   sync.Mutex
	rows map[int64]domain.Department
}

func newMemStore(ds ...domain.Department) *memStore {
	s := &memStore{rows: map[int64]domain.Department{}}
	for _, d := range ds {
		s.rows[d.ID] = d
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (s *memStore) List(context.Context) ([]domain.Department, error) { return nil, nil }

func (s *memStore) Create(context.Context, *domain.Department) (*domain.Department, error) {
	return nil, errors.New("not supported")
}

func (s *memStore) CompareAndUpdate(_ context.Context, id, expected int64, p domain.DepartmentPatch) (domain.SwapResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok {
		return domain.SwapResult{}, nil
	}
	if d.Version != expected {
		return domain.SwapResult{Current: &d}, nil
	}
	d = p.Apply(d)
	d.Version++
	s.rows[id] = d
	return domain.SwapResult{Swapped: true, Current: &d}, nil
}

func (s *memStore) CompareAndDelete(_ context.Context, id, expected int64) (domain.SwapResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok {
		return domain.SwapResult{}, nil
	}
	if d.Version != expected {
		return domain.SwapResult{Current: &d}, nil
	}
	delete(s.rows, id)
	return domain.SwapResult{Swapped: true, Current: &d}, nil
}

func TestScenario_TwoWritersThenRetry(t *testing.T) {
	t.Parallel()

	store := newMemStore(*econ(1, "350000"))
	f := newFixture(t)
	svc := NewService(slog.Default(), store, f.dependents, f.audit, f.tx, nil, 5)
	ctx := context.Background()

	// Writer A.
	a, err := svc.Update(ctx, 7, 1, domain.DepartmentPatch{Budget: ptr(dec("400000"))})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCommitted, a.Outcome)
	assert.Equal(t, int64(2), a.Department.Version)
	assert.True(t, a.Department.Budget.Equal(dec("400000")))

	// Writer B read version 1 too.
	bPatch := domain.DepartmentPatch{Budget: ptr(dec("380000")), Name: ptr("Economics")}
	b, err := svc.Update(ctx, 7, 1, bPatch)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeConflict, b.Outcome)
	assert.Equal(t, int64(2), b.Conflict.CurrentVersion)
	require.Len(t, b.Conflict.Fields, 1)
	fc := b.Conflict.Fields[0]
	assert.Equal(t, domain.FieldBudget, fc.Field)
	assert.True(t, fc.Attempted.(decimal.Decimal).Equal(dec("380000")))
	assert.True(t, fc.Current.(decimal.Decimal).Equal(dec("400000")))

	// B retries with the reported version.
	retry, err := svc.Update(ctx, 7, b.Conflict.CurrentVersion, bPatch)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCommitted, retry.Outcome)
	assert.Equal(t, int64(3), retry.Department.Version)

	// Idempotent read.
	r1, err := svc.GetDepartment(ctx, 7)
	require.NoError(t, err)
	r2, err := svc.GetDepartment(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestScenario_ConcurrentWritersNoLostUpdate(t *testing.T) {
	t.Parallel()

	store := newMemStore(*econ(1, "100"))
	f := newFixture(t)
	svc := NewService(slog.Default(), store, f.dependents, f.audit, f.tx, f.metrics, 5)

	const writers = 8
	results := make([]domain.WriteResult, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Update(context.Background(), 7, 1, domain.DepartmentPatch{Budget: ptr(decimal.NewFromInt(int64(1000 + i)))})
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	var winner decimal.Decimal
	committed := 0
	for _, r := range results {
		switch r.Outcome {
		case domain.OutcomeCommitted:
			committed++
			winner = r.Department.Budget
		case domain.OutcomeConflict:
			assert.GreaterOrEqual(t, r.Conflict.CurrentVersion, int64(2))
		default:
			t.Errorf("unexpected outcome %s", r.Outcome)
		}
	}
	assert.Equal(t, 1, committed)

	stored, err := store.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
	assert.True(t, stored.Budget.Equal(winner))
}

func TestScenario_UpdateAfterDeleteIsGone(t *testing.T) {
	t.Parallel()

	store := newMemStore(*econ(1, "100"))
	f := newFixture(t)

	var tombstones sync.Map
	f.audit.LogFunc = func(_ context.Context, rec domain.AuditRecord) error {
		if rec.Action == domain.AuditActionDelete {
			tombstones.Store(rec.EntityID, true)
		}
		return nil
	}
	f.audit.WasDeletedFunc = func(_ context.Context, _ domain.EntityType, id int64) (bool, error) {
		_, ok := tombstones.Load(id)
		return ok, nil
	}
	svc := NewService(slog.Default(), store, f.dependents, f.audit, f.tx, nil, 5)
	ctx := context.Background()

	del, err := svc.Delete(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCommitted, del.Outcome)

	upd, err := svc.Update(ctx, 7, 1, domain.DepartmentPatch{Name: ptr("Econ")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeGone, upd.Outcome)

	missing, err := svc.Update(ctx, 99, 1, domain.DepartmentPatch{Name: ptr("Econ")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, missing.Outcome)
}
