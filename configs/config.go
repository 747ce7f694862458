// config.go - Configuration loaded from environment variables

package configs

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Upstage endpoints used when no override is set
	DefaultBaseURL = "https://api.upstage.ai/v1"
	DefaultOCRURL  = "https://api.upstage.ai/v1/document-digitization"
)

// ErrMissingAPIKey is returned by LoadConfig when UPSTAGE_API_KEY is not set.
var ErrMissingAPIKey = errors.New("UPSTAGE_API_KEY environment variable is required")

// Config holds everything read from the environment at startup.
// It is built once and passed to the handlers; nothing mutates it afterwards.
type Config struct {
	// Upstage credentials and endpoints (OCR + OpenAI-compatible chat)
	APIKey  string
	BaseURL string
	OCRURL  string

	// Server Configuration
	Port           string
	AllowedOrigins string

	// Generation
	Models       *ModelTable
	DefaultModel string

	// OCR provider selection
	OCRProvider        string // "upstage", "gemini" or "tesseract"
	GeminiAPIKey       string
	GeminiOCRModel     string
	TesseractLanguages []string

	// Timeouts
	OCRTimeout time.Duration
	LLMTimeout time.Duration

	// Performance settings
	ParallelOCR    bool
	MaxParallelOCR int

	// Image preprocessing settings
	EnableImagePreprocessing bool
	MaxImageDimension        int

	// MongoDB audit log (disabled when MongoURI is empty)
	MongoURI    string
	MongoDBName string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		APIKey:  getEnv("UPSTAGE_API_KEY", ""),
		BaseURL: getEnv("UPSTAGE_BASE_URL", DefaultBaseURL),
		OCRURL:  getEnv("UPSTAGE_OCR_URL", DefaultOCRURL),

		Port:           getEnv("PORT", "8000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		Models: DefaultModels(),

		OCRProvider:        strings.ToLower(getEnv("OCR_PROVIDER", "upstage")),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiOCRModel:     getEnv("GEMINI_OCR_MODEL", "gemini-2.5-flash"),
		TesseractLanguages: getEnvList("TESSERACT_LANGUAGES", []string{"kor", "eng"}),

		OCRTimeout: time.Duration(getEnvInt("OCR_TIMEOUT", 60)) * time.Second,
		LLMTimeout: time.Duration(getEnvInt("LLM_TIMEOUT", 300)) * time.Second,

		ParallelOCR:    getEnvBool("PARALLEL_OCR", false),
		MaxParallelOCR: getEnvInt("MAX_PARALLEL_OCR", 4),

		EnableImagePreprocessing: getEnvBool("ENABLE_IMAGE_PREPROCESSING", false),
		MaxImageDimension:        getEnvInt("MAX_IMAGE_DIMENSION", 2500),

		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDBName: getEnv("MONGO_DB_NAME", "ghostwriter"),
	}

	// Required: Upstage API Key
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg.DefaultModel = getEnv("DEFAULT_MODEL", DefaultModelID)
	if !cfg.Models.Has(cfg.DefaultModel) {
		log.Printf("DEFAULT_MODEL %q is not configured, using %s", cfg.DefaultModel, DefaultModelID)
		cfg.DefaultModel = DefaultModelID
	}

	if cfg.MaxParallelOCR < 1 {
		cfg.MaxParallelOCR = 1
	}

	log.Println("✓ Configuration loaded successfully")
	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
