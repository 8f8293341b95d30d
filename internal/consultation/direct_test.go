package consultation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, system, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

func TestDirectParser_Parse(t *testing.T) {
	ctx := context.Background()

	t.Run("rules alone when core complete", func(t *testing.T) {
		called := false
		p := NewDirectParser(completerFunc(func(context.Context, string, string) (string, error) {
			called = true
			return "", nil
		}))

		in, err := p.Parse(ctx, "promote my cars to kids on instagram")
		require.NoError(t, err)
		assert.Equal(t, "cars", in.Goal)
		assert.Equal(t, "kids", in.Audience)
		assert.Equal(t, []string{"Instagram"}, in.Channels)
		assert.False(t, called, "model fallback must not run when rules suffice")
	})

	t.Run("model fills only the gaps", func(t *testing.T) {
		p := NewDirectParser(completerFunc(func(_ context.Context, _, prompt string) (string, error) {
			assert.Contains(t, prompt, "vinyl records")
			return `{"goal": "something else entirely", "audience": "collectors", "channels": ["instagram"], "budget": "$300", "tone": "", "timeline": ""}`, nil
		}))

		in, err := p.Parse(ctx, "I want to sell vinyl records")
		require.NoError(t, err)
		// The rule hit for goal wins over the model's suggestion.
		assert.Equal(t, "vinyl records", in.Goal)
		assert.Equal(t, "collectors", in.Audience)
		assert.Equal(t, []string{"Instagram"}, in.Channels)
		assert.Equal(t, "$300", in.Budget)
	})

	t.Run("fenced model output tolerated", func(t *testing.T) {
		p := NewDirectParser(completerFunc(func(context.Context, string, string) (string, error) {
			return "```json\n{\"goal\": \"yoga classes\", \"audience\": \"beginners\", \"channels\": [], \"budget\": \"\", \"tone\": \"\", \"timeline\": \"\"}\n```", nil
		}))

		in, err := p.Parse(ctx, "need some marketing help")
		require.NoError(t, err)
		assert.Equal(t, "yoga classes", in.Goal)
		assert.Equal(t, "beginners", in.Audience)
	})

	t.Run("model failure keeps the rule result", func(t *testing.T) {
		p := NewDirectParser(completerFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("connection refused")
		}))

		in, err := p.Parse(ctx, "I want to sell vinyl records")
		require.Error(t, err)
		assert.Equal(t, "vinyl records", in.Goal)
	})

	t.Run("nil completer is rules only", func(t *testing.T) {
		p := NewDirectParser(nil)
		in, err := p.Parse(ctx, "need some marketing help")
		require.NoError(t, err)
		assert.False(t, in.CoreComplete())
	})

	t.Run("garbage model output returns decode error", func(t *testing.T) {
		p := NewDirectParser(completerFunc(func(context.Context, string, string) (string, error) {
			return "sure, happy to help!", nil
		}))

		_, err := p.Parse(ctx, "need some marketing help")
		assert.Error(t, err)
	})
}
