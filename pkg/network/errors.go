package network

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateCommit is matched by [DuplicateCommitError]. A window must
	// not contain the same commit id twice.
	ErrDuplicateCommit = errors.New("duplicate commit in window")

	// ErrInvariantViolation is matched by [InvariantViolationError]. It
	// signals a bug in the reservation bookkeeping, never bad input.
	ErrInvariantViolation = errors.New("layout invariant violated")
)

// MaxLaneSearchSteps caps every free-lane search.
const MaxLaneSearchSteps = 10000

// DuplicateCommitError reports a commit id seen twice while building the
// time axis.
type DuplicateCommitError struct {
	ID string
}

func (e *DuplicateCommitError) Error() string {
	return fmt.Sprintf("duplicate commit %q in window", e.ID)
}

// Is makes errors.Is(err, ErrDuplicateCommit) succeed.
func (e *DuplicateCommitError) Is(target error) bool { return target == ErrDuplicateCommit }

// InvariantViolationError reports a lane search that did not terminate
// within [MaxLaneSearchSteps].
type InvariantViolationError struct {
	Op    string
	Span  Span
	Steps int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: no free lane in %s after %d steps", e.Op, e.Span, e.Steps)
}

// Is makes errors.Is(err, ErrInvariantViolation) succeed.
func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariantViolation }
