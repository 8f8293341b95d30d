package consultation

import (
	"context"
	"fmt"
	"time"
)

// Judge is the external semantic arbiter of completeness. Given a snapshot
// of the gathered intent it answers whether the information is enough to
// build a campaign from. Implementations live in the perception package.
type Judge interface {
	JudgeComplete(ctx context.Context, snap Snapshot) (bool, error)
}

// Evaluator decides whether a session has gathered enough information. It
// runs a local structural audit first and only consults the judge when the
// audit passes. Judge failures fail closed: the session keeps gathering.
type Evaluator struct {
	judge   Judge
	timeout time.Duration
}

// NewEvaluator builds an evaluator. A nil judge puts it in local-only mode,
// where the structural audit alone decides.
func NewEvaluator(judge Judge, timeout time.Duration) *Evaluator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Evaluator{judge: judge, timeout: timeout}
}

// Audit is the local structural check: every core field present and none of
// them a vague placeholder. It never performs I/O.
func (e *Evaluator) Audit(in Intent) bool {
	if !in.CoreComplete() {
		return false
	}
	if isVagueGoal(in.Goal) || isVagueAudience(in.Audience) {
		return false
	}
	return true
}

// Evaluate runs the audit and, when it passes, asks the judge to confirm.
// The judge gets a bounded window and one retry. Any judge failure after
// that returns false together with ErrEvaluatorUnavailable so the caller
// can log the degradation, but the verdict is always usable.
func (e *Evaluator) Evaluate(ctx context.Context, st *State) (bool, error) {
	if !e.Audit(st.Intent) {
		return false, nil
	}
	if e.judge == nil {
		return true, nil
	}

	snap := st.SnapshotIntent()
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		jctx, cancel := context.WithTimeout(ctx, e.timeout)
		ok, err := e.judge.JudgeComplete(jctx, snap)
		cancel()
		if err == nil {
			return ok, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return false, fmt.Errorf("%w: %v", ErrEvaluatorUnavailable, lastErr)
}
