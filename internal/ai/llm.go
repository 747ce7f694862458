// llm.go - Chat completion client for article generation

package ai

import (
	"context"
	"errors"
	"time"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/bosocmputer/ghostwriter/internal/common"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ErrEmptyChoices is returned when the completion carries no choices
var ErrEmptyChoices = errors.New("llm: empty choices")

// CompletionRequest is one non-streaming completion call
type CompletionRequest struct {
	Model  string
	Config configs.ModelConfig
	Prompt Prompt
}

// Completion is the text of the first choice plus reported usage
type Completion struct {
	Text  string
	Usage *common.TokenUsage
}

// ArticleWriter abstracts the LLM so handlers can be tested without the network
type ArticleWriter interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// OpenAIWriter implements ArticleWriter against an OpenAI-compatible endpoint
// (Upstage Solar) using the openai-go SDK.
type OpenAIWriter struct {
	client openai.Client
}

// NewOpenAIWriter creates a writer for baseURL. Retries are disabled: a failed
// completion is reported to the caller as-is.
func NewOpenAIWriter(apiKey, baseURL string, timeout time.Duration, extra ...option.RequestOption) (*OpenAIWriter, error) {
	if apiKey == "" {
		return nil, errors.New("llm api key missing")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	opts = append(opts, extra...)
	return &OpenAIWriter{client: openai.NewClient(opts...)}, nil
}

// buildCompletionParams maps a request onto chat completion params.
// reasoning_effort is left at its zero value, and therefore omitted from the
// body, for models that do not accept it.
func buildCompletionParams(req CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Prompt.System),
			openai.UserMessage(req.Prompt.User),
		},
		Temperature: openai.Float(req.Config.Temperature),
		MaxTokens:   openai.Int(req.Config.MaxTokens),
	}
	if req.Config.SupportsReasoning() {
		params.ReasoningEffort = shared.ReasoningEffort(req.Config.ReasoningEffort)
	}
	return params
}

// Complete sends one non-streaming completion and returns the first choice
func (w *OpenAIWriter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	resp, err := w.client.Chat.Completions.New(ctx, buildCompletionParams(req), option.WithJSONSet("stream", false))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyChoices
	}

	return &Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: &common.TokenUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}
