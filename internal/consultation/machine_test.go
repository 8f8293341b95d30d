package consultation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// judgeFunc adapts a closure to the Judge interface for tests.
type judgeFunc func(ctx context.Context, snap Snapshot) (bool, error)

func (f judgeFunc) JudgeComplete(ctx context.Context, snap Snapshot) (bool, error) {
	return f(ctx, snap)
}

func approvingJudge() Judge {
	return judgeFunc(func(context.Context, Snapshot) (bool, error) { return true, nil })
}

func brokenJudge() Judge {
	return judgeFunc(func(context.Context, Snapshot) (bool, error) {
		return false, errors.New("upstream timeout")
	})
}

func newTestMachine(j Judge) *Machine {
	return NewMachine(NewEvaluator(j, time.Second))
}

func TestStep_FullConsultation(t *testing.T) {
	m := newTestMachine(approvingJudge())
	ctx := context.Background()

	st := NewState("s1", "I want to promote my cars to kids", 8, 2)

	st, turn, err := m.Step(ctx, st, "")
	require.NoError(t, err)
	require.NotNil(t, turn.Question)
	assert.Equal(t, FieldChannels, turn.Question.Field)
	assert.Equal(t, StageGathering, st.Stage)
	assert.Equal(t, "cars", st.Intent.Goal)
	assert.Equal(t, "kids", st.Intent.Audience)
	assert.Equal(t, 1, st.QuestionCount)

	st, turn, err = m.Step(ctx, st, "instagram and email")
	require.NoError(t, err)
	assert.Nil(t, turn.Question)
	assert.Equal(t, StageCompleted, st.Stage)
	assert.Equal(t, []string{"Instagram", "Email"}, st.Intent.Channels)
	assert.True(t, st.HasEnoughInfo)
	assert.Contains(t, turn.Summary, "cars")
	assert.Contains(t, st.FinalPlan, "Questions asked: 1")
}

func TestStep_InputStateNeverMutated(t *testing.T) {
	m := newTestMachine(approvingJudge())
	orig := NewState("s1", "promote my cars to kids", 8, 2)

	next, _, err := m.Step(context.Background(), orig, "")
	require.NoError(t, err)

	assert.Equal(t, StageInitial, orig.Stage)
	assert.Empty(t, orig.Intent.Goal)
	assert.Empty(t, orig.QAHistory)
	assert.NotSame(t, orig, next)
}

func TestStep_EmptyAnswerIsNoOp(t *testing.T) {
	m := newTestMachine(approvingJudge())
	ctx := context.Background()

	st := NewState("s1", "hello", 8, 2)
	st, turn, err := m.Step(ctx, st, "")
	require.NoError(t, err)
	require.NotNil(t, turn.Question)
	asked := turn.Question.Text

	same, turn2, err := m.Step(ctx, st, "   ")
	require.NoError(t, err)
	assert.Same(t, st, same)
	require.NotNil(t, turn2.Question)
	assert.Equal(t, asked, turn2.Question.Text)
	assert.Equal(t, st.QuestionCount, same.QuestionCount)
}

func TestStep_CeilingForcesCompletion(t *testing.T) {
	// The hard ceiling wins even when channels were never given and the
	// judge would say no.
	m := newTestMachine(judgeFunc(func(context.Context, Snapshot) (bool, error) {
		return false, nil
	}))
	ctx := context.Background()

	st := NewState("s1", "hello there", 1, 2)
	st, turn, err := m.Step(ctx, st, "")
	require.NoError(t, err)
	require.NotNil(t, turn.Question)
	require.Equal(t, 1, st.QuestionCount)

	st, turn, err = m.Step(ctx, st, "no idea honestly")
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, st.Stage)
	assert.False(t, st.HasEnoughInfo)
	assert.Empty(t, st.Intent.Channels)
	assert.NotEmpty(t, turn.Summary)
}

func TestStep_JudgeFailureFailsClosed(t *testing.T) {
	m := newTestMachine(brokenJudge())
	ctx := context.Background()

	st := NewState("s1", "promote my cars to kids on instagram", 8, 2)

	// Core fields are complete on the first turn, but the judge is down;
	// the session must keep gathering instead of declaring readiness.
	st, turn, err := m.Step(ctx, st, "")
	require.NoError(t, err)
	assert.Equal(t, StageGathering, st.Stage)
	require.NotNil(t, turn.Question)
	assert.Equal(t, 1, st.ValidationRetries)
	assert.Contains(t, st.Meta["evaluator"], "judge unavailable")

	st, _, err = m.Step(ctx, st, "nothing else to add")
	require.NoError(t, err)
	assert.Equal(t, StageGathering, st.Stage)
	assert.Equal(t, 2, st.ValidationRetries)

	// Backward edge spent: the session proceeds with what it has.
	st, turn, err = m.Step(ctx, st, "really, that is everything")
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, st.Stage)
	assert.False(t, st.HasEnoughInfo)
	assert.NotEmpty(t, turn.Summary)
}

func TestStep_TerminalSessionRejected(t *testing.T) {
	m := newTestMachine(approvingJudge())
	ctx := context.Background()

	for _, stage := range []Stage{StageCompleted, StageFailed} {
		st := NewState("s1", "hello", 8, 2)
		st.Stage = stage

		got, turn, err := m.Step(ctx, st, "more input")
		require.ErrorIs(t, err, ErrInvalidStageTransition)
		assert.Same(t, st, got)
		assert.Nil(t, turn)
		assert.Len(t, got.RawInput, 1)
	}
}

func TestStep_CorruptedHistoryFailsSession(t *testing.T) {
	m := newTestMachine(approvingJudge())

	st := NewState("s1", "hello", 8, 2)
	st.Stage = StageGathering
	st.QAHistory = []QA{
		{Question: "first?", Field: FieldChannels},
		{Question: "second?", Field: FieldBudget, Answer: "x", Answered: true},
	}
	st.QuestionCount = 2

	got, turn, err := m.Step(context.Background(), st, "answer")
	var corrupted *CorruptedStateError
	require.ErrorAs(t, err, &corrupted)
	assert.Equal(t, "s1", corrupted.SessionID)
	assert.NotNil(t, corrupted.Snapshot)
	assert.Equal(t, StageFailed, got.Stage)
	assert.Equal(t, StageFailed, turn.Stage)

	// The snapshot preserves the pre-failure stage.
	assert.Equal(t, StageGathering, corrupted.Snapshot.Stage)
}

func TestStep_ContextCancellation(t *testing.T) {
	m := newTestMachine(approvingJudge())
	st := NewState("s1", "hello", 8, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, _, err := m.Step(ctx, st, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Same(t, st, got)
	assert.Equal(t, StageInitial, got.Stage)
}

func TestStep_Termination(t *testing.T) {
	// Adversarial run: answers that never parse and a judge that never
	// approves. The session must still terminate within the ceiling plus
	// the bounded validation retries.
	m := newTestMachine(judgeFunc(func(context.Context, Snapshot) (bool, error) {
		return false, nil
	}))
	ctx := context.Background()

	st := NewState("s1", "hmm", 4, 2)
	var err error
	for i := 0; i < 4+2+2; i++ {
		st, _, err = m.Step(ctx, st, "huh?")
		require.NoError(t, err)
		if st.Stage.Terminal() {
			break
		}
	}
	assert.True(t, st.Stage.Terminal(), "stage %s after ceiling", st.Stage)
	assert.LessOrEqual(t, st.QuestionCount, st.MaxQuestions)
}

func TestStep_QuestionCountMonotonic(t *testing.T) {
	m := newTestMachine(approvingJudge())
	ctx := context.Background()

	st := NewState("s1", "promote my cars", 8, 2)
	prev := 0
	for i := 0; i < 6 && !st.Stage.Terminal(); i++ {
		var err error
		st, _, err = m.Step(ctx, st, "kids on instagram")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, st.QuestionCount, prev)
		assert.Equal(t, len(st.QAHistory), st.QuestionCount)
		prev = st.QuestionCount
	}
}
