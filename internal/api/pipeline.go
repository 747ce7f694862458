// pipeline.go - OCR-then-generate flow behind POST /generate

package api

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/bosocmputer/ghostwriter/internal/ai"
	"github.com/bosocmputer/ghostwriter/internal/common"
	"github.com/bosocmputer/ghostwriter/internal/processor"
	"github.com/bosocmputer/ghostwriter/internal/storage"
	"golang.org/x/sync/errgroup"
)

// ErrNoText is returned when no document produced any non-whitespace text
var ErrNoText = errors.New("이미지에서 텍스트를 추출할 수 없습니다.")

// LLMError wraps a failed completion. Its message is the underlying error's.
type LLMError struct {
	Err error
}

func (e *LLMError) Error() string { return e.Err.Error() }
func (e *LLMError) Unwrap() error { return e.Err }

// Document status values
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
)

// GenerationRecorder stores an audit record per generation attempt
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, rec storage.GenerationRecord) error
}

// Generator runs OCR over the uploaded documents and writes one article from
// the combined text. All fields are set once at startup and only read afterwards.
type Generator struct {
	OCR          ai.OCRProvider
	Writer       ai.ArticleWriter
	Models       *configs.ModelTable
	DefaultModel string
	SystemPrompt string
	Preparer     processor.ImagePreparer
	Parallel     bool
	MaxParallel  int
	Recorder     GenerationRecorder // optional
}

// GenerateResult carries the article plus per-document OCR outcomes. On
// failure it is still returned so callers can report document statuses.
type GenerateResult struct {
	RequestID    string
	Model        string
	Article      string
	CombinedText string
	Documents    []storage.DocumentStatus
	Tokens       *common.TokenUsage
	Summary      map[string]interface{} // timing and token totals, see RequestContext.GetSummary
}

// Generate resolves the model, extracts text from every document in order and
// submits a single completion. It returns ErrNoText or an *LLMError on failure.
func (g *Generator) Generate(ctx context.Context, docs []ai.Document, requestedModel string) (*GenerateResult, error) {
	reqCtx := common.NewRequestContext()

	modelID, modelCfg := g.Models.Resolve(requestedModel, g.DefaultModel)
	if modelID != requestedModel {
		reqCtx.LogWarning("Unknown model %q, using %s", requestedModel, modelID)
	}

	result := &GenerateResult{RequestID: reqCtx.RequestID, Model: modelID}
	rec := storage.GenerationRecord{
		RequestID:      reqCtx.RequestID,
		RequestedModel: requestedModel,
		ResolvedModel:  modelID,
		OCRProvider:    g.OCR.GetProviderName(),
	}

	// Step 1: OCR every document
	reqCtx.StartStep("ocr_extraction")
	reqCtx.LogInfo("Extracting text from %d document(s) with %s", len(docs), g.OCR.GetProviderName())
	texts, statuses := g.extractAll(ctx, docs, reqCtx)
	result.Documents = statuses
	rec.Documents = statuses

	var combined strings.Builder
	for i, st := range statuses {
		if st.Status == StatusFailed {
			continue
		}
		combined.WriteString(texts[i])
		combined.WriteString("\n\n")
	}
	result.CombinedText = combined.String()
	rec.CombinedChars = utf8.RuneCountInString(result.CombinedText)

	if strings.TrimSpace(result.CombinedText) == "" {
		reqCtx.EndStep("failed", nil, ErrNoText)
		rec.Outcome = "no_text"
		rec.Error = ErrNoText.Error()
		g.record(ctx, reqCtx, rec)
		result.Summary = reqCtx.GetSummary()
		return result, ErrNoText
	}
	reqCtx.EndStep("success", nil, nil)

	// Step 2: one completion with the persona prompt
	reqCtx.StartStep("article_generate")
	reqCtx.LogInfo("Generating with model: %s (temperature: %.1f, max_tokens: %d, reasoning_effort: %q)",
		modelID, modelCfg.Temperature, modelCfg.MaxTokens, modelCfg.ReasoningEffort)

	completion, err := g.Writer.Complete(ctx, ai.CompletionRequest{
		Model:  modelID,
		Config: modelCfg,
		Prompt: ai.BuildArticlePrompt(g.SystemPrompt, result.CombinedText),
	})
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		reqCtx.LogError("LLM Error: %v", err)
		rec.Outcome = "llm_error"
		rec.Error = err.Error()
		g.record(ctx, reqCtx, rec)
		result.Summary = reqCtx.GetSummary()
		return result, &LLMError{Err: err}
	}
	reqCtx.EndStep("success", completion.Usage, nil)

	result.Article = completion.Text
	result.Tokens = completion.Usage

	rec.Outcome = "success"
	rec.ArticleChars = utf8.RuneCountInString(completion.Text)
	g.record(ctx, reqCtx, rec)

	result.Summary = reqCtx.GetSummary()
	return result, nil
}

// extractAll runs OCR per document and returns texts and statuses indexed by
// upload position, so the combined order never depends on completion order.
func (g *Generator) extractAll(ctx context.Context, docs []ai.Document, reqCtx *common.RequestContext) ([]string, []storage.DocumentStatus) {
	texts := make([]string, len(docs))
	statuses := make([]storage.DocumentStatus, len(docs))

	if !g.Parallel || len(docs) < 2 {
		for i, doc := range docs {
			texts[i], statuses[i] = g.extractOne(ctx, i, doc, reqCtx)
		}
		return texts, statuses
	}

	var eg errgroup.Group
	eg.SetLimit(max(g.MaxParallel, 1))
	for i, doc := range docs {
		eg.Go(func() error {
			texts[i], statuses[i] = g.extractOne(ctx, i, doc, reqCtx)
			return nil
		})
	}
	_ = eg.Wait()
	return texts, statuses
}

// extractOne never fails the request: an OCR error only marks the document as failed
func (g *Generator) extractOne(ctx context.Context, index int, doc ai.Document, reqCtx *common.RequestContext) (string, storage.DocumentStatus) {
	status := storage.DocumentStatus{
		Index:       index,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
	}

	data, contentType, err := g.Preparer.Prepare(doc.Data, doc.ContentType)
	if err != nil && !errors.Is(err, processor.ErrNotImage) {
		reqCtx.LogWarning("Preprocessing failed for %s, using original: %v", doc.Filename, err)
	}
	doc.Data, doc.ContentType = data, contentType

	text, err := g.OCR.ExtractText(ctx, doc, reqCtx)
	if err != nil {
		reqCtx.LogError("OCR Error on %s: %v", doc.Filename, err)
		status.Status = StatusFailed
		status.Error = err.Error()
		return "", status
	}

	status.Chars = utf8.RuneCountInString(text)
	if strings.TrimSpace(text) == "" {
		status.Status = StatusEmpty
	} else {
		status.Status = StatusSuccess
	}
	return text, status
}

func (g *Generator) record(ctx context.Context, reqCtx *common.RequestContext, rec storage.GenerationRecord) {
	if g.Recorder == nil {
		return
	}
	rec.Steps = reqCtx.Steps
	rec.Tokens = reqCtx.TotalTokens
	rec.DurationMS = reqCtx.Duration().Milliseconds()

	if err := g.Recorder.RecordGeneration(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[%s] ⚠️  failed to record generation: %v", reqCtx.RequestID, err)
	}
}
