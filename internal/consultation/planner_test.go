package consultation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanner_Next(t *testing.T) {
	p := NewPlanner()

	t.Run("channels asked first", func(t *testing.T) {
		st := NewState("s1", "hi", 8, 2)
		q := p.Next(st)
		require.NotNil(t, q)
		assert.Equal(t, FieldChannels, q.Field)
	})

	t.Run("budget outranks goal and audience", func(t *testing.T) {
		st := NewState("s1", "hi", 8, 2)
		st.Intent.Channels = []string{"Email"}
		q := p.Next(st)
		require.NotNil(t, q)
		assert.Equal(t, FieldBudget, q.Field)
	})

	t.Run("goal before audience", func(t *testing.T) {
		st := NewState("s1", "hi", 8, 2)
		st.Intent.Channels = []string{"Email"}
		st.Intent.Budget = "$500"
		q := p.Next(st)
		require.NotNil(t, q)
		assert.Equal(t, FieldGoal, q.Field)
	})

	t.Run("nil once core fields are complete", func(t *testing.T) {
		st := NewState("s1", "hi", 8, 2)
		st.Intent = completeIntent()
		assert.Nil(t, p.Next(st), "budget alone must not keep the session open")
	})

	t.Run("nil at the question ceiling", func(t *testing.T) {
		st := NewState("s1", "hi", 2, 2)
		st.QuestionCount = 2
		assert.Nil(t, p.Next(st))
	})

	t.Run("re-asked field rotates phrasing", func(t *testing.T) {
		st := NewState("s1", "hi", 8, 2)
		first := p.Next(st)
		require.NotNil(t, first)

		st.QAHistory = append(st.QAHistory, QA{Question: first.Text, Field: first.Field, Answer: "huh", Answered: true})
		st.QuestionCount++

		second := p.Next(st)
		require.NotNil(t, second)
		assert.Equal(t, first.Field, second.Field)
		assert.NotEqual(t, first.Text, second.Text)
	})
}
