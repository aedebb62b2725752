package domain

import "fmt"

// SwapResult is what a repository reports for a compare-and-swap write.
// Swapped is true when the conditional write matched. Otherwise Current holds
// the record as re-read after the miss, or nil when the row no longer exists.
type SwapResult struct {
	Swapped bool
	Current *Department
}

// WriteResult is the modeled outcome of a versioned update or delete.
// Exactly one of the payload fields is populated, according to Outcome:
//
//	OutcomeCommitted  Department (nil for a delete)
//	OutcomeConflict   Conflict
//	OutcomeBlocked    Block
//	OutcomeGone, OutcomeNotFound  none
type WriteResult struct {
	Outcome    Outcome
	ID         int64
	Department *Department
	Conflict   *ConflictReport
	Block      *DependencyBlock
}

// Committed reports whether the write was applied.
func (r WriteResult) Committed() bool { return r.Outcome == OutcomeCommitted }

// Err converts the outcome into the matching typed error.
// It returns nil for a committed write.
func (r WriteResult) Err() error {
	switch r.Outcome {
	case OutcomeCommitted:
		return nil
	case OutcomeConflict:
		return &ConflictError{Report: r.Conflict}
	case OutcomeGone:
		return fmt.Errorf("department %d: %w", r.ID, ErrGone)
	case OutcomeNotFound:
		return fmt.Errorf("department %d: %w", r.ID, ErrNotFound)
	case OutcomeBlocked:
		return &BlockedError{Block: r.Block}
	}
	return fmt.Errorf("department %d: unknown write outcome %d", r.ID, int(r.Outcome))
}
