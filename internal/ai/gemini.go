// gemini.go - Gemini client for OCR processing

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bosocmputer/ghostwriter/internal/common"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiOCRPrompt = `Transcribe all text visible in this document exactly as written.
Keep the original language and reading order. Preserve line breaks between paragraphs, list items and table rows.
Do not translate, summarise or add commentary. Output plain text only.`

// GeminiProvider implements OCRProvider using a multimodal Gemini model
type GeminiProvider struct {
	apiKey    string
	modelName string
	opts      []option.ClientOption
}

// NewGeminiProvider creates a new Gemini OCR provider
func NewGeminiProvider(apiKey, modelName string, opts ...option.ClientOption) *GeminiProvider {
	return &GeminiProvider{
		apiKey:    apiKey,
		modelName: modelName,
		opts:      opts,
	}
}

// GetProviderName returns "gemini"
func (g *GeminiProvider) GetProviderName() string {
	return "gemini"
}

// ExtractText sends the document bytes as an inline blob and returns the transcription
func (g *GeminiProvider) ExtractText(ctx context.Context, doc Document, reqCtx *common.RequestContext) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("gemini OCR provider requires GEMINI_API_KEY")
	}

	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.modelName)
	model.SetMaxOutputTokens(8192)
	model.SetTemperature(0)

	mimeType := doc.ContentType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	resp, err := model.GenerateContent(ctx,
		genai.Text(geminiOCRPrompt),
		genai.Blob{
			MIMEType: mimeType,
			Data:     doc.Data,
		},
	)
	if err != nil {
		gemErr := categorizeGeminiError(err)
		reqCtx.LogError("Gemini OCR failed for %s: %s", doc.Filename, gemErr.Error())
		return "", fmt.Errorf("gemini OCR API call failed: %w", gemErr)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini API")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		reqCtx.LogWarning("Gemini OCR output for %s was truncated (FinishReason: MAX_TOKENS)", doc.Filename)
	}
	if resp.UsageMetadata != nil {
		reqCtx.LogInfo("📄 %s: %d characters extracted | 🪙 Tokens: %d", doc.Filename, text.Len(), resp.UsageMetadata.TotalTokenCount)
	}

	return text.String(), nil
}
