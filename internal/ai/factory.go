// factory.go - OCR Provider Factory for creating provider instances

package ai

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/bosocmputer/ghostwriter/configs"
)

// ProviderConstructor builds an OCR provider that lives outside this package
type ProviderConstructor func(cfg *configs.Config) (OCRProvider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ProviderConstructor{}
)

// RegisterOCRProvider makes an optional provider selectable through OCR_PROVIDER.
// Providers that need cgo (tesseract) register themselves from an init func
// in their own package, so the default build stays pure Go.
func RegisterOCRProvider(name string, ctor ProviderConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

func registeredProvider(name string) (ProviderConstructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	return ctor, ok
}

// SupportedProviders lists the built-in providers followed by registered ones
func SupportedProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	extra := make([]string, 0, len(registry))
	for name := range registry {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append([]string{"upstage", "gemini"}, extra...)
}

// CreateOCRProvider creates an OCR provider based on configuration
func CreateOCRProvider(cfg *configs.Config) (OCRProvider, error) {
	switch cfg.OCRProvider {
	case "", "upstage":
		log.Printf("🟣 Creating Upstage OCR provider (%s)", cfg.OCRURL)
		return NewUpstageProvider(cfg.APIKey, cfg.OCRURL, cfg.OCRTimeout), nil

	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("OCR_PROVIDER=gemini requires GEMINI_API_KEY")
		}
		log.Printf("🔵 Creating Gemini OCR provider (model: %s)", cfg.GeminiOCRModel)
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiOCRModel), nil
	}

	if ctor, ok := registeredProvider(cfg.OCRProvider); ok {
		log.Printf("⚪ Creating %s OCR provider", cfg.OCRProvider)
		return ctor(cfg)
	}

	if cfg.OCRProvider == "tesseract" {
		return nil, fmt.Errorf("unsupported OCR provider: tesseract (binary built without -tags tesseract)")
	}
	return nil, fmt.Errorf("unsupported OCR provider: %s (supported: %s)",
		cfg.OCRProvider, strings.Join(SupportedProviders(), ", "))
}
