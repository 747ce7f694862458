//go:build tesseract && cgo

package tesseract

import (
	"context"
	"testing"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/bosocmputer/ghostwriter/internal/ai"
	"github.com/bosocmputer/ghostwriter/internal/common"
	"github.com/stretchr/testify/require"
)

func TestFactoryCreatesRegisteredTesseract(t *testing.T) {
	p, err := ai.CreateOCRProvider(&configs.Config{OCRProvider: "tesseract", TesseractLanguages: []string{"eng"}})
	require.NoError(t, err)
	require.Equal(t, "tesseract", p.GetProviderName())
	require.Contains(t, ai.SupportedProviders(), "tesseract")
}

func TestExtractTextCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().ExtractText(ctx, ai.Document{Filename: "a.png", Data: []byte("x")}, common.NewRequestContext())
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractTextRejectsNonImage(t *testing.T) {
	doc := ai.Document{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("not an image")}

	_, err := NewProvider().ExtractText(context.Background(), doc, common.NewRequestContext())
	require.Error(t, err)
}
