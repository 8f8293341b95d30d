package campaign

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketnerd/internal/consultation"
)

func completedState() *consultation.State {
	st := consultation.NewState("s1", "promote my candle shop", 8, 2)
	st.Stage = consultation.StageCompleted
	st.Intent = consultation.Intent{
		Goal:     "handmade candles",
		Audience: "young professionals",
		Channels: []string{"Instagram", "Email"},
		Budget:   "$500",
	}
	st.QuestionCount = 2
	st.HasEnoughInfo = true
	return st
}

func TestFromState(t *testing.T) {
	t.Run("completed session converts", func(t *testing.T) {
		req, err := FromState(completedState())
		require.NoError(t, err)

		assert.Equal(t, "handmade candles", req.Product)
		assert.Equal(t, "young professionals", req.Audience)
		assert.Equal(t, []string{"Instagram", "Email"}, req.Channels)
		assert.Equal(t, "$500", req.Budget)
		assert.Equal(t, NotSpecified, req.Tone)
		assert.Equal(t, NotSpecified, req.Timeline)
		assert.True(t, req.Complete)
	})

	t.Run("non-completed stages rejected", func(t *testing.T) {
		for _, stage := range []consultation.Stage{
			consultation.StageInitial,
			consultation.StageGathering,
			consultation.StageValidating,
			consultation.StageReady,
			consultation.StageFailed,
		} {
			st := completedState()
			st.Stage = stage
			_, err := FromState(st)
			assert.ErrorIs(t, err, ErrNotCompleted, "stage %s", stage)
		}
	})

	t.Run("missing channels fall back to default mix", func(t *testing.T) {
		st := completedState()
		st.Intent.Channels = nil
		st.HasEnoughInfo = false

		req, err := FromState(st)
		require.NoError(t, err)
		assert.Equal(t, []string{"Email", "Instagram"}, req.Channels)
		assert.False(t, req.Complete)
	})

	t.Run("conversion is idempotent and does not mutate state", func(t *testing.T) {
		st := completedState()
		before := st.Clone()

		first, err := FromState(st)
		require.NoError(t, err)
		second, err := FromState(st)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff(first, second))
		assert.Empty(t, cmp.Diff(before, st))
	})

	t.Run("default slice is copied not shared", func(t *testing.T) {
		st := completedState()
		st.Intent.Channels = nil

		req, _ := FromState(st)
		req.Channels[0] = "mutated"

		again, _ := FromState(st)
		assert.Equal(t, "Email", again.Channels[0])
	})
}

func TestRequestPrompt(t *testing.T) {
	req, err := FromState(completedState())
	require.NoError(t, err)

	prompt := req.Prompt()
	assert.Contains(t, prompt, "handmade candles")
	assert.Contains(t, prompt, "Instagram, Email")
	assert.NotContains(t, prompt, "assumptions", "complete sessions need no hedge")

	req.Complete = false
	assert.Contains(t, req.Prompt(), "assumptions")
}

func TestBrief(t *testing.T) {
	req, err := FromState(completedState())
	require.NoError(t, err)

	out := Brief(req)
	assert.Contains(t, out, "# Campaign Brief")
	assert.Contains(t, out, "**Budget:** $500")
	assert.NotContains(t, out, "assumptions")
}
