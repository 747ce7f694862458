package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "solar-pro2",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "# Article\n\nbody"}}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 340, "total_tokens": 460}
}`

// captureServer records the decoded JSON body of the last chat completion call.
func captureServer(t *testing.T, body *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer up-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
}

func TestOpenAIWriterSendsReasoningEffortWhenConfigured(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	w, err := NewOpenAIWriter("up-key", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)

	_, cfg := configs.DefaultModels().Resolve("solar-pro2", configs.DefaultModelID)
	out, err := w.Complete(context.Background(), CompletionRequest{
		Model:  "solar-pro2",
		Config: cfg,
		Prompt: BuildArticlePrompt("SYSTEM", "A\n\nB\n\n"),
	})
	require.NoError(t, err)
	require.Equal(t, "# Article\n\nbody", out.Text)
	require.Equal(t, 460, out.Usage.TotalTokens)

	require.Equal(t, "solar-pro2", body["model"])
	require.Equal(t, 0.7, body["temperature"])
	require.Equal(t, float64(16384), body["max_tokens"])
	require.Equal(t, "high", body["reasoning_effort"])
	require.Equal(t, false, body["stream"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	require.Equal(t, "system", system["role"])
	require.Equal(t, "SYSTEM", system["content"])
	require.Equal(t, "user", user["role"])
	require.Equal(t, articleInstruction+"A\n\nB\n\n", user["content"])
}

func TestOpenAIWriterOmitsReasoningEffortWhenUnsupported(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	w, err := NewOpenAIWriter("up-key", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)

	_, cfg := configs.DefaultModels().Resolve("upstage/solar-1-mini-chat", configs.DefaultModelID)
	_, err = w.Complete(context.Background(), CompletionRequest{
		Model:  "upstage/solar-1-mini-chat",
		Config: cfg,
		Prompt: BuildArticlePrompt("SYSTEM", "text"),
	})
	require.NoError(t, err)

	require.Equal(t, "upstage/solar-1-mini-chat", body["model"])
	_, present := body["reasoning_effort"]
	require.False(t, present)
}

func TestOpenAIWriterReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	w, err := NewOpenAIWriter("up-key", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)

	_, err = w.Complete(context.Background(), CompletionRequest{Model: "x", Prompt: Prompt{System: "s", User: "u"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}

func TestOpenAIWriterNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL + "/"
	srv.Close()

	w, err := NewOpenAIWriter("up-key", url, 5*time.Second)
	require.NoError(t, err)

	_, err = w.Complete(context.Background(), CompletionRequest{Model: "x", Prompt: Prompt{System: "s", User: "u"}})
	require.Error(t, err)
}

func TestOpenAIWriterEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	w, err := NewOpenAIWriter("up-key", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)

	_, err = w.Complete(context.Background(), CompletionRequest{Model: "m", Prompt: Prompt{System: "s", User: "u"}})
	require.ErrorIs(t, err, ErrEmptyChoices)
}

func TestNewOpenAIWriterRequiresKey(t *testing.T) {
	_, err := NewOpenAIWriter("", configs.DefaultBaseURL, time.Second)
	require.Error(t, err)
}
