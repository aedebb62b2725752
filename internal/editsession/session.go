// Package editsession tracks one client-side edit of a department through
// submission, conflict discovery and resolution.
//
// A Session starts Clean from an immutable Snapshot of the record and the
// version it was read at. Submit moves it through Submitting to Committed,
// Conflicted, Gone or Blocked. From Conflicted the edit can be discarded or
// retried against the authoritative version the conflict reported; the
// session never resubmits the version that was rejected.
package editsession

import (
	"context"
	"fmt"
	"sync"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// Backend performs the versioned writes. department.Service implements it
// in-process and client.Client implements it over HTTP.
type Backend interface {
	Update(ctx context.Context, id, expectedVersion int64, patch domain.DepartmentPatch) (domain.WriteResult, error)
	Delete(ctx context.Context, id, expectedVersion int64) (domain.WriteResult, error)
}

// Snapshot is the record as the client last saw it. It is a value: copying it
// never shares mutable state with the session.
type Snapshot struct {
	dept domain.Department
}

// NewSnapshot captures d.
func NewSnapshot(d domain.Department) Snapshot {
	if d.AdministratorID != nil {
		id := *d.AdministratorID
		d.AdministratorID = &id
	}
	return Snapshot{dept: d}
}

// ID returns the record identity.
func (s Snapshot) ID() int64 { return s.dept.ID }

// Version returns the version the snapshot was read at.
func (s Snapshot) Version() int64 { return s.dept.Version }

// Department returns a copy of the captured record.
func (s Snapshot) Department() domain.Department {
	return NewSnapshot(s.dept).dept
}

type intent int

const (
	intentUpdate intent = iota + 1
	intentDelete
)

// FieldComparison pairs what the writer tried to save with what is stored now.
type FieldComparison struct {
	Field   string
	Mine    any
	Theirs  any
	Differs bool
}

// Session is safe for concurrent use, but only one submission can be in
// flight at a time.
type Session struct {
	backend Backend

	mu        sync.Mutex
	state     State
	snapshot  Snapshot
	pending   domain.DepartmentPatch
	intent    intent
	report    *domain.ConflictReport
	block     *domain.DependencyBlock
	committed *domain.Department
}

// New starts a Clean session editing snapshot.
func New(backend Backend, snapshot Snapshot) *Session {
	return &Session{
		backend:  backend,
		state:    StateClean,
		snapshot: snapshot,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the snapshot the next submission will be based on.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Pending returns the accumulated patch.
func (s *Session) Pending() domain.DepartmentPatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Report returns the conflict report while Conflicted, nil otherwise.
func (s *Session) Report() *domain.ConflictReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConflicted {
		return nil
	}
	return s.report
}

// Block returns the dependency block while Blocked, nil otherwise.
func (s *Session) Block() *domain.DependencyBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBlocked {
		return nil
	}
	return s.block
}

// Committed returns the record written by a committed update. It is nil for
// a committed delete and in every other state.
func (s *Session) Committed() *domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCommitted {
		return nil
	}
	return s.committed
}

// Edit merges patch into the pending changes. Only allowed while Clean.
func (s *Session) Edit(patch domain.DepartmentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateClean {
		return &TransitionError{Action: "edit", From: s.state}
	}
	s.pending = s.pending.Merge(patch)
	return nil
}

// Submit sends the pending patch with the snapshot's version.
//
// A transport failure or cancellation returns the session to Clean with the
// same snapshot and pending patch, and the error is returned. Resubmitting is
// safe: if the lost write did commit, the store answers with a conflict whose
// diff is empty.
func (s *Session) Submit(ctx context.Context) (domain.WriteResult, error) {
	s.mu.Lock()
	if s.state != StateClean {
		defer s.mu.Unlock()
		return domain.WriteResult{}, &TransitionError{Action: "submit", From: s.state}
	}
	if s.pending.IsEmpty() {
		s.mu.Unlock()
		return domain.WriteResult{}, ErrEmptyPatch
	}
	s.intent = intentUpdate
	req := s.beginLocked()
	s.mu.Unlock()

	return s.dispatch(ctx, req)
}

// SubmitDelete deletes the record at the snapshot's version. Pending edits
// are kept but not sent.
func (s *Session) SubmitDelete(ctx context.Context) (domain.WriteResult, error) {
	s.mu.Lock()
	if s.state != StateClean {
		defer s.mu.Unlock()
		return domain.WriteResult{}, &TransitionError{Action: "submit delete", From: s.state}
	}
	s.intent = intentDelete
	req := s.beginLocked()
	s.mu.Unlock()

	return s.dispatch(ctx, req)
}

// Retry reissues the original intent against the version the conflict
// reported. The snapshot is replaced by the authoritative record. Only the
// rejected version is refused; a reported version below the snapshot's, as
// with a snapshot built ahead of the store, is retried against.
func (s *Session) Retry(ctx context.Context) (domain.WriteResult, error) {
	return s.retry(ctx, "retry", nil)
}

// RetryWith reissues an update with a revised patch against the version the
// conflict reported. It replaces the pending patch and turns a conflicted
// delete into an update.
func (s *Session) RetryWith(ctx context.Context, patch domain.DepartmentPatch) (domain.WriteResult, error) {
	if patch.IsEmpty() {
		return domain.WriteResult{}, ErrEmptyPatch
	}
	return s.retry(ctx, "retry with", &patch)
}

func (s *Session) retry(ctx context.Context, action string, patch *domain.DepartmentPatch) (domain.WriteResult, error) {
	s.mu.Lock()
	if s.state != StateConflicted {
		defer s.mu.Unlock()
		return domain.WriteResult{}, &TransitionError{Action: action, From: s.state}
	}
	// The snapshot still holds the version that was just rejected.
	if s.report == nil || s.report.CurrentVersion == s.snapshot.Version() {
		s.mu.Unlock()
		return domain.WriteResult{}, ErrStaleVersion
	}

	s.snapshot = NewSnapshot(s.report.Current)
	if patch != nil {
		s.pending = *patch
		s.intent = intentUpdate
	}
	s.report = nil
	req := s.beginLocked()
	s.mu.Unlock()

	return s.dispatch(ctx, req)
}

// Discard abandons the edit. Allowed from Clean, Conflicted, Gone and Blocked.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClean, StateConflicted, StateGone, StateBlocked:
		s.state = StateDiscarded
		s.pending = domain.DepartmentPatch{}
		return nil
	}
	return &TransitionError{Action: "discard", From: s.state}
}

// Comparison lists, for every field the writer attempted, its attempted and
// stored values. Only available while Conflicted; a conflicted delete
// attempted no fields and yields an empty list.
func (s *Session) Comparison() ([]FieldComparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConflicted {
		return nil, &TransitionError{Action: "compare", From: s.state}
	}
	return compare(s.report), nil
}

type request struct {
	id      int64
	version int64
	patch   domain.DepartmentPatch
	intent  intent
}

// beginLocked moves the session to Submitting and captures what to send.
// s.mu must be held.
func (s *Session) beginLocked() request {
	s.state = StateSubmitting
	return request{
		id:      s.snapshot.ID(),
		version: s.snapshot.Version(),
		patch:   s.pending,
		intent:  s.intent,
	}
}

// dispatch performs one submission without holding the lock and records the
// outcome. Only one dispatch can run at a time because every entry point
// requires a non-Submitting state.
func (s *Session) dispatch(ctx context.Context, req request) (domain.WriteResult, error) {
	id := req.id

	var (
		res domain.WriteResult
		err error
	)
	switch req.intent {
	case intentDelete:
		res, err = s.backend.Delete(ctx, req.id, req.version)
	default:
		res, err = s.backend.Update(ctx, req.id, req.version, req.patch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateClean
		return domain.WriteResult{}, err
	}

	switch res.Outcome {
	case domain.OutcomeCommitted:
		s.state = StateCommitted
		s.committed = res.Department
		if res.Department != nil {
			s.snapshot = NewSnapshot(*res.Department)
		}
	case domain.OutcomeConflict:
		if res.Conflict == nil {
			s.state = StateClean
			return domain.WriteResult{}, fmt.Errorf("department %d: conflict without report", id)
		}
		s.state = StateConflicted
		s.report = res.Conflict
	case domain.OutcomeGone, domain.OutcomeNotFound:
		s.state = StateGone
	case domain.OutcomeBlocked:
		s.state = StateBlocked
		s.block = res.Block
	default:
		s.state = StateClean
		return domain.WriteResult{}, fmt.Errorf("department %d: unknown outcome %d", id, int(res.Outcome))
	}

	return res, nil
}

func compare(r *domain.ConflictReport) []FieldComparison {
	differs := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		differs[f.Field] = true
	}

	p, cur := r.Attempted, r.Current
	out := []FieldComparison{}

	if p.Name != nil {
		out = append(out, FieldComparison{Field: domain.FieldName, Mine: *p.Name, Theirs: cur.Name, Differs: differs[domain.FieldName]})
	}
	if p.Budget != nil {
		out = append(out, FieldComparison{Field: domain.FieldBudget, Mine: *p.Budget, Theirs: cur.Budget, Differs: differs[domain.FieldBudget]})
	}
	if p.StartDate != nil {
		out = append(out, FieldComparison{
			Field:   domain.FieldStartDate,
			Mine:    domain.DateOnly(*p.StartDate),
			Theirs:  domain.DateOnly(cur.StartDate),
			Differs: differs[domain.FieldStartDate],
		})
	}
	if p.TouchesAdministrator() {
		var mine any
		if !p.ClearAdministrator && p.AdministratorID != nil {
			mine = *p.AdministratorID
		}
		var theirs any
		if cur.AdministratorID != nil {
			theirs = *cur.AdministratorID
		}
		out = append(out, FieldComparison{
			Field:   domain.FieldAdministratorID,
			Mine:    mine,
			Theirs:  theirs,
			Differs: differs[domain.FieldAdministratorID],
		})
	}

	return out
}
