// interface.go - OCR Provider and article writer interfaces

package ai

import (
	"context"
	"fmt"

	"github.com/bosocmputer/ghostwriter/internal/common"
)

// Document is one uploaded file, held in memory for the duration of a request
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OCRProvider defines the interface that all OCR providers must implement
// This allows us to support multiple OCR backends (Upstage, Gemini, Tesseract) with the same interface
type OCRProvider interface {
	// ExtractText runs OCR on a single document and returns the raw text
	ExtractText(ctx context.Context, doc Document, reqCtx *common.RequestContext) (string, error)

	// GetProviderName returns the name of the provider (e.g., "upstage", "gemini")
	GetProviderName() string
}

// OCRError is returned when the OCR service answers with a non-200 status
type OCRError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("%s OCR API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}
