package consultation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// STATE MACHINE
// ============================================================================
// Machine advances a consultation one user turn at a time. Step is the only
// writer of session state: it clones the input, runs stage handlers until the
// session rests on a stage that needs user input or is terminal, and returns
// the new state. The caller's copy is never mutated.

// Turn is what one Step produced for the caller.
type Turn struct {
	// Question is the follow-up to show the user. Nil when the session
	// rested on a terminal stage.
	Question *Question

	// Stage the session rested on after this turn.
	Stage Stage

	// Summary is the finalized consultation brief, set once the session
	// completes.
	Summary string

	// Reason explains a FAILED resting stage.
	Reason string
}

// Machine wires the extractor, planner and evaluator together.
type Machine struct {
	extractor *Extractor
	planner   *Planner
	evaluator *Evaluator
}

func NewMachine(evaluator *Evaluator) *Machine {
	return &Machine{
		extractor: NewExtractor(),
		planner:   NewPlanner(),
		evaluator: evaluator,
	}
}

// Step feeds one user utterance into the session and advances it until it
// rests. The returned state is always a fresh copy; on error the input state
// is returned untouched so the caller keeps a usable last-good snapshot.
//
// An empty input while a question is pending is a no-op: same state, same
// question. Stepping a COMPLETED or FAILED session is a caller bug and
// returns ErrInvalidStageTransition.
func (m *Machine) Step(ctx context.Context, st *State, input string) (*State, *Turn, error) {
	if st.Stage.Terminal() {
		return st, nil, fmt.Errorf("%w: session %s is %s", ErrInvalidStageTransition, st.SessionID, st.Stage)
	}
	if err := ctx.Err(); err != nil {
		return st, nil, err
	}
	if err := st.CheckIntegrity(); err != nil {
		failed := st.Clone()
		failed.Stage = StageFailed
		failed.Meta["failure"] = err.Error()
		return failed, &Turn{Stage: StageFailed, Reason: err.Error()}, err
	}

	input = strings.TrimSpace(input)
	if input == "" && st.AwaitingAnswer() {
		return st, &Turn{Question: pendingQuestion(st), Stage: st.Stage}, nil
	}

	next := st.Clone()
	m.ingest(next, input)

	turn, err := m.run(ctx, next)
	if err != nil {
		return st, nil, err
	}
	return next, turn, nil
}

// ingest records the utterance and merges whatever it carries into the
// intent. Answers to a pending question get the targeted extraction path,
// everything else only the opportunistic one.
func (m *Machine) ingest(st *State, input string) {
	if st.Stage == StageInitial {
		up := m.extractor.Extract(st.InitialInput(), st.Intent)
		up.apply(&st.Intent)
		st.Stage = StageGathering
		if input == "" || input == st.InitialInput() {
			return
		}
	}
	if input == "" {
		return
	}

	st.RawInput = append(st.RawInput, input)
	if st.AwaitingAnswer() {
		qa := st.LastQuestion()
		qa.Answer = input
		qa.Answered = true
		up := m.extractor.ExtractAnswer(qa.Field, input, st.Intent)
		up.apply(&st.Intent)
		return
	}
	up := m.extractor.Extract(input, st.Intent)
	up.apply(&st.Intent)
}

// run cascades stage handlers until the session rests. Each iteration
// handles exactly one stage; the loop bound is a belt-and-suspenders guard,
// the handlers themselves cannot cycle.
func (m *Machine) run(ctx context.Context, st *State) (*Turn, error) {
	for i := 0; i < 16; i++ {
		switch st.Stage {
		case StageGathering:
			if route(st) == StageValidating {
				st.Stage = StageValidating
				continue
			}
			q := m.planner.Next(st)
			if q == nil {
				st.Stage = StageValidating
				continue
			}
			st.QAHistory = append(st.QAHistory, QA{
				Question: q.Text,
				Field:    q.Field,
				AskedAt:  time.Now(),
			})
			st.QuestionCount++
			return &Turn{Question: q, Stage: StageGathering}, nil

		case StageValidating:
			enough, err := m.evaluator.Evaluate(ctx, st)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err != nil {
				st.Meta["evaluator"] = err.Error()
			}
			st.HasEnoughInfo = enough
			if enough {
				st.Stage = StageReady
				continue
			}
			if st.QuestionCount >= st.MaxQuestions {
				// Hard ceiling wins over the evaluator verdict.
				st.Stage = StageReady
				continue
			}
			if st.ValidationRetries >= st.MaxValidationRetries {
				// The backward edge is spent; proceed with what we have.
				st.Stage = StageReady
				continue
			}
			// Take the one permitted backward edge and rest with a
			// follow-up so the next turn re-enters validation.
			st.ValidationRetries++
			st.Stage = StageGathering
			q := m.planner.Next(st)
			if q == nil {
				// Core fields are all set but the judge was unconvinced
				// or unavailable. Ask for open-ended detail.
				q = &Question{Text: "Could you share any extra detail about the campaign, like budget, tone, or timing, before I wrap up the plan?"}
			}
			st.QAHistory = append(st.QAHistory, QA{
				Question: q.Text,
				Field:    q.Field,
				AskedAt:  time.Now(),
			})
			st.QuestionCount++
			return &Turn{Question: q, Stage: StageGathering}, nil

		case StageReady:
			finalize(st)
			st.FinalPlan = m.summarize(st)
			st.Stage = StageCompleted
			continue

		case StageCompleted:
			return &Turn{Stage: StageCompleted, Summary: st.FinalPlan}, nil

		case StageFailed:
			return &Turn{Stage: StageFailed, Reason: st.Meta["failure"]}, nil

		default:
			st.Meta["failure"] = fmt.Sprintf("unknown stage %q", st.Stage)
			st.Stage = StageFailed
			return &Turn{Stage: StageFailed, Reason: st.Meta["failure"]}, nil
		}
	}
	st.Stage = StageFailed
	st.Meta["failure"] = "stage cascade did not settle"
	return &Turn{Stage: StageFailed, Reason: st.Meta["failure"]}, nil
}

// route is the pure transition predicate for GATHERING: validation starts as
// soon as the core fields are in or the question ceiling is hit.
func route(st *State) Stage {
	if st.AwaitingAnswer() {
		return StageGathering
	}
	if st.Intent.CoreComplete() || st.QuestionCount >= st.MaxQuestions {
		return StageValidating
	}
	return StageGathering
}

// finalize normalizes intent formatting before handoff: trimmed values and
// canonical channel names. Channel strings that slipped in as comma lists
// are re-normalized through the alias table.
func finalize(st *State) {
	in := &st.Intent
	in.Goal = strings.TrimSpace(in.Goal)
	in.Audience = strings.TrimSpace(in.Audience)
	in.Budget = strings.TrimSpace(in.Budget)
	in.Tone = strings.TrimSpace(in.Tone)
	in.Timeline = strings.TrimSpace(in.Timeline)
	if len(in.Channels) > 0 {
		if normalized := NormalizeChannels(strings.Join(in.Channels, ", ")); len(normalized) > 0 {
			in.Channels = normalized
		}
	}
}

// summarize renders the human-readable consultation brief stored on the
// completed session.
func (m *Machine) summarize(st *State) string {
	var b strings.Builder
	b.WriteString("Consultation summary\n")
	fmt.Fprintf(&b, "  Goal:     %s\n", orNotSpecified(st.Intent.Goal))
	fmt.Fprintf(&b, "  Audience: %s\n", orNotSpecified(st.Intent.Audience))
	fmt.Fprintf(&b, "  Channels: %s\n", orNotSpecified(strings.Join(st.Intent.Channels, ", ")))
	fmt.Fprintf(&b, "  Budget:   %s\n", orNotSpecified(st.Intent.Budget))
	if st.Intent.Tone != "" {
		fmt.Fprintf(&b, "  Tone:     %s\n", st.Intent.Tone)
	}
	if st.Intent.Timeline != "" {
		fmt.Fprintf(&b, "  Timeline: %s\n", st.Intent.Timeline)
	}
	fmt.Fprintf(&b, "  Questions asked: %d\n", st.QuestionCount)
	return b.String()
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not specified"
	}
	return v
}

func pendingQuestion(st *State) *Question {
	qa := st.LastQuestion()
	if qa == nil {
		return nil
	}
	return &Question{Field: qa.Field, Text: qa.Question}
}
