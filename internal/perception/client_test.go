package perception

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(url string) *OpenAIClient {
	return NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestOpenAIClient_CompleteWithSystem(t *testing.T) {
	t.Run("sends system and user messages", func(t *testing.T) {
		var got chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(completionBody("  hello there  ")))
		}))
		defer srv.Close()

		c := newTestOpenAIClient(srv.URL)
		out, err := c.CompleteWithSystem(context.Background(), "be brief", "say hello")
		require.NoError(t, err)
		assert.Equal(t, "hello there", out, "response must be trimmed")

		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "be brief", got.Messages[0].Content)
		assert.Equal(t, "user", got.Messages[1].Role)
	})

	t.Run("retries after 429", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(completionBody("ok")))
		}))
		defer srv.Close()

		c := newTestOpenAIClient(srv.URL)
		out, err := c.Complete(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("non-retryable status fails immediately", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad key", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := newTestOpenAIClient(srv.URL)
		_, err := c.Complete(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		c := newTestOpenAIClient(srv.URL)
		_, err := c.Complete(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no completion")
	})

	t.Run("missing api key rejected before any request", func(t *testing.T) {
		c := NewOpenAIClient("")
		_, err := c.Complete(context.Background(), "hi")
		require.Error(t, err)
	})
}
