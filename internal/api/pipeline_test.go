package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/bosocmputer/ghostwriter/internal/ai"
	"github.com/bosocmputer/ghostwriter/internal/common"
	"github.com/bosocmputer/ghostwriter/internal/storage"
	"github.com/stretchr/testify/require"
)

// fakeOCR answers by filename; a missing entry behaves like a non-200 response.
type fakeOCR struct {
	texts map[string]string
	delay map[string]time.Duration

	mu    sync.Mutex
	calls []string
}

func (f *fakeOCR) GetProviderName() string { return "fake" }

func (f *fakeOCR) ExtractText(ctx context.Context, doc ai.Document, _ *common.RequestContext) (string, error) {
	if d := f.delay[doc.Filename]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.calls = append(f.calls, doc.Filename)
	f.mu.Unlock()

	text, ok := f.texts[doc.Filename]
	if !ok {
		return "", &ai.OCRError{Provider: "fake", StatusCode: 500, Body: "internal error"}
	}
	return text, nil
}

type fakeWriter struct {
	text string
	err  error

	mu       sync.Mutex
	requests []ai.CompletionRequest
}

func (f *fakeWriter) Complete(_ context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.text, Usage: &common.TokenUsage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}}, nil
}

type fakeRecorder struct {
	records []storage.GenerationRecord
	err     error
}

func (f *fakeRecorder) RecordGeneration(_ context.Context, rec storage.GenerationRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeRecorder) RecentGenerations(_ context.Context, limit int64) ([]storage.GenerationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := min(int(limit), len(f.records))
	return f.records[:n], nil
}

func newTestGenerator(ocr ai.OCRProvider, writer ai.ArticleWriter) *Generator {
	return &Generator{
		OCR:          ocr,
		Writer:       writer,
		Models:       configs.DefaultModels(),
		DefaultModel: configs.DefaultModelID,
		SystemPrompt: "SYSTEM",
	}
}

func docs(names ...string) []ai.Document {
	out := make([]ai.Document, len(names))
	for i, n := range names {
		out[i] = ai.Document{Filename: n, ContentType: "image/png", Data: []byte(n)}
	}
	return out
}

func TestGenerateConcatenatesInUploadOrder(t *testing.T) {
	ocr := &fakeOCR{texts: map[string]string{"a.png": "A", "b.png": "B"}}
	writer := &fakeWriter{text: "article"}
	gen := newTestGenerator(ocr, writer)

	res, err := gen.Generate(context.Background(), docs("a.png", "b.png"), "solar-pro3")
	require.NoError(t, err)

	require.Equal(t, "article", res.Article)
	require.Equal(t, "A\n\nB\n\n", res.CombinedText)
	require.Equal(t, []string{"a.png", "b.png"}, ocr.calls)

	require.Len(t, writer.requests, 1)
	req := writer.requests[0]
	require.Equal(t, "solar-pro3", req.Model)
	require.Equal(t, configs.ReasoningMedium, req.Config.ReasoningEffort)
	require.Equal(t, "SYSTEM", req.Prompt.System)
	require.Contains(t, req.Prompt.User, "A\n\nB\n\n")
	require.Equal(t, ai.BuildArticlePrompt("SYSTEM", "A\n\nB\n\n"), req.Prompt)
}

func TestGenerateSkipsFailedDocuments(t *testing.T) {
	ocr := &fakeOCR{texts: map[string]string{"a.png": "A", "c.png": "C"}}
	writer := &fakeWriter{text: "article"}
	gen := newTestGenerator(ocr, writer)

	res, err := gen.Generate(context.Background(), docs("a.png", "broken.png", "c.png"), "solar-pro2")
	require.NoError(t, err)

	require.Equal(t, "A\n\nC\n\n", res.CombinedText)
	require.Equal(t, StatusSuccess, res.Documents[0].Status)
	require.Equal(t, StatusFailed, res.Documents[1].Status)
	require.Contains(t, res.Documents[1].Error, "500")
	require.Equal(t, StatusSuccess, res.Documents[2].Status)
	require.Equal(t, 2, res.Documents[2].Index)
}

func TestGenerateNoTextWhenAllOCRFails(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d files", n), func(t *testing.T) {
			names := make([]string, n)
			for i := range names {
				names[i] = fmt.Sprintf("f%d.png", i)
			}
			writer := &fakeWriter{text: "never"}
			gen := newTestGenerator(&fakeOCR{}, writer)

			res, err := gen.Generate(context.Background(), docs(names...), "solar-pro2")
			require.ErrorIs(t, err, ErrNoText)
			require.Len(t, res.Documents, n)
			require.Empty(t, writer.requests)
		})
	}
}

func TestGenerateNoTextWhenOnlyWhitespace(t *testing.T) {
	ocr := &fakeOCR{texts: map[string]string{"a.png": "  \n\t", "b.png": ""}}
	writer := &fakeWriter{text: "never"}
	gen := newTestGenerator(ocr, writer)

	res, err := gen.Generate(context.Background(), docs("a.png", "b.png"), "solar-pro2")
	require.ErrorIs(t, err, ErrNoText)
	require.Equal(t, StatusEmpty, res.Documents[0].Status)
	require.Equal(t, StatusEmpty, res.Documents[1].Status)
	require.Empty(t, writer.requests)
}

func TestGenerateUnknownModelMatchesDefault(t *testing.T) {
	ocr := &fakeOCR{texts: map[string]string{"a.png": "A"}}

	unknown := &fakeWriter{text: "x"}
	_, err := newTestGenerator(ocr, unknown).Generate(context.Background(), docs("a.png"), "gpt-9")
	require.NoError(t, err)

	explicit := &fakeWriter{text: "x"}
	_, err = newTestGenerator(ocr, explicit).Generate(context.Background(), docs("a.png"), configs.DefaultModelID)
	require.NoError(t, err)

	require.Equal(t, explicit.requests, unknown.requests)
	require.Equal(t, configs.DefaultModelID, unknown.requests[0].Model)
}

func TestGenerateLLMErrorCarriesMessage(t *testing.T) {
	ocr := &fakeOCR{texts: map[string]string{"a.png": "A"}}
	cause := errors.New("dial tcp 10.0.0.1:443: connect: connection refused")
	gen := newTestGenerator(ocr, &fakeWriter{err: cause})

	res, err := gen.Generate(context.Background(), docs("a.png"), "solar-pro2")
	require.Error(t, err)
	require.ErrorIs(t, err, cause)
	require.Equal(t, cause.Error(), err.Error())

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	require.NotNil(t, res)
}

func TestGenerateParallelPreservesOrder(t *testing.T) {
	ocr := &fakeOCR{
		texts: map[string]string{"a.png": "A", "b.png": "B", "c.png": "C", "d.png": "D"},
		delay: map[string]time.Duration{"a.png": 40 * time.Millisecond, "b.png": 20 * time.Millisecond},
	}
	gen := newTestGenerator(ocr, &fakeWriter{text: "article"})
	gen.Parallel = true
	gen.MaxParallel = 4

	res, err := gen.Generate(context.Background(), docs("a.png", "b.png", "broken.png", "c.png", "d.png"), "solar-pro2")
	require.NoError(t, err)
	require.Equal(t, "A\n\nB\n\nC\n\nD\n\n", res.CombinedText)
	require.Len(t, ocr.calls, 5)
	for i, st := range res.Documents {
		require.Equal(t, i, st.Index)
	}
}

func TestGenerateRecordsAudit(t *testing.T) {
	ocr := &fakeOCR{texts: map[string]string{"a.png": "A"}}
	rec := &fakeRecorder{err: errors.New("mongo down")}
	gen := newTestGenerator(ocr, &fakeWriter{text: "글"})
	gen.Recorder = rec

	res, err := gen.Generate(context.Background(), docs("a.png", "x.png"), "nope")
	require.NoError(t, err)

	require.Len(t, rec.records, 1)
	got := rec.records[0]
	require.Equal(t, res.RequestID, got.RequestID)
	require.Equal(t, "nope", got.RequestedModel)
	require.Equal(t, configs.DefaultModelID, got.ResolvedModel)
	require.Equal(t, "fake", got.OCRProvider)
	require.Equal(t, "success", got.Outcome)
	require.Equal(t, 1, got.ArticleChars)
	require.Equal(t, 3, got.Tokens.TotalTokens)
	require.Len(t, got.Documents, 2)
	require.Len(t, got.Steps, 2)

	require.Equal(t, res.RequestID, res.Summary["request_id"])
	require.Equal(t, 2, res.Summary["total_steps"])
}
