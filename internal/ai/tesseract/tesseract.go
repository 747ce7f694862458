//go:build tesseract && cgo

// tesseract.go - Local OCR through libtesseract

package tesseract

import (
	"context"
	"fmt"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/bosocmputer/ghostwriter/internal/ai"
	"github.com/bosocmputer/ghostwriter/internal/common"
	"github.com/otiai10/gosseract/v2"
)

func init() {
	ai.RegisterOCRProvider("tesseract", func(cfg *configs.Config) (ai.OCRProvider, error) {
		return NewProvider(cfg.TesseractLanguages...), nil
	})
}

// Provider implements ai.OCRProvider with a local tesseract installation.
// It needs no API key and is mostly useful for offline development.
type Provider struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewProvider creates a new local OCR provider
func NewProvider(languages ...string) *Provider {
	return &Provider{languages: languages, clientFactory: gosseract.NewClient}
}

// GetProviderName returns "tesseract"
func (p *Provider) GetProviderName() string {
	return "tesseract"
}

// ExtractText runs tesseract over the in-memory image
func (p *Provider) ExtractText(ctx context.Context, doc ai.Document, reqCtx *common.RequestContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// gosseract clients are not safe for concurrent use, so each call gets its own
	client := p.clientFactory()
	defer client.Close()

	if len(p.languages) > 0 {
		if err := client.SetLanguage(p.languages...); err != nil {
			return "", fmt.Errorf("failed to set tesseract languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(doc.Data); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}

	reqCtx.LogInfo("📄 %s: %d characters extracted", doc.Filename, len(text))
	return text, nil
}
