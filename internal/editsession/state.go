package editsession

import (
	"errors"
	"fmt"
)

// State is where an edit attempt stands.
type State int

const (
	StateClean State = iota + 1
	StateSubmitting
	StateCommitted
	StateConflicted
	StateGone
	StateBlocked
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateSubmitting:
		return "submitting"
	case StateCommitted:
		return "committed"
	case StateConflicted:
		return "conflicted"
	case StateGone:
		return "gone"
	case StateBlocked:
		return "blocked"
	case StateDiscarded:
		return "discarded"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateDiscarded
}

var (
	// ErrStaleVersion is returned when a retry would present the version that
	// was already rejected.
	ErrStaleVersion = errors.New("retry would reuse a stale version")

	// ErrEmptyPatch is returned when an update is submitted with nothing to change.
	ErrEmptyPatch = errors.New("nothing to submit")

	// ErrInvalidTransition is wrapped by every *TransitionError.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// TransitionError reports an action attempted in a state that does not allow it.
type TransitionError struct {
	Action string
	From   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
