package consultation

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers. Extraction misses are deliberately
// not represented here: an unmatched text simply yields no field update.
var (
	// ErrInvalidStageTransition is returned when Step is invoked on a
	// session that already reached COMPLETED or FAILED. The caller must
	// open a new session.
	ErrInvalidStageTransition = errors.New("consultation: step on terminal session")

	// ErrEvaluatorUnavailable marks a failed or ambiguous semantic judge
	// call. It never escapes Step: the machine degrades to "not complete"
	// and keeps gathering.
	ErrEvaluatorUnavailable = errors.New("consultation: completeness judge unavailable")

	// ErrSessionNotFound is returned by the session manager for unknown
	// identifiers.
	ErrSessionNotFound = errors.New("consultation: session not found")
)

// CorruptedStateError reports a structural invariant violation such as two
// unanswered questions in the history. The session transitions to FAILED and
// the last valid snapshot travels with the error for diagnostics.
type CorruptedStateError struct {
	SessionID string
	Detail    string
	Snapshot  *State
}

func (e *CorruptedStateError) Error() string {
	return fmt.Sprintf("consultation: corrupted state in session %s: %s", e.SessionID, e.Detail)
}
