// main.go - The entry point and server setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bosocmputer/ghostwriter/configs"
	"github.com/bosocmputer/ghostwriter/internal/ai"
	"github.com/bosocmputer/ghostwriter/internal/api"
	"github.com/bosocmputer/ghostwriter/internal/processor"
	"github.com/bosocmputer/ghostwriter/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	// Step 0: Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Build the persona prompt once; it never changes at runtime
	systemPrompt, err := ai.BuildSystemPrompt(ai.DefaultPersona())
	if err != nil {
		log.Fatalf("Failed to build system prompt: %v", err)
	}

	// Step 2: OCR provider and LLM client
	ocr, err := ai.CreateOCRProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to create OCR provider: %v", err)
	}
	writer, err := ai.NewOpenAIWriter(cfg.APIKey, cfg.BaseURL, cfg.LLMTimeout)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	gen := &api.Generator{
		OCR:          ocr,
		Writer:       writer,
		Models:       cfg.Models,
		DefaultModel: cfg.DefaultModel,
		SystemPrompt: systemPrompt,
		Preparer: processor.ImagePreparer{
			Enabled:      cfg.EnableImagePreprocessing,
			MaxDimension: cfg.MaxImageDimension,
		},
		Parallel:    cfg.ParallelOCR,
		MaxParallel: cfg.MaxParallelOCR,
	}

	// Step 3: Optional MongoDB audit log
	var history api.GenerationHistory
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer store.Close()

		gen.Recorder = store
		history = store
	} else {
		log.Println("MONGO_URI not set, generation log disabled")
	}

	router := api.NewRouter(api.NewHandler(gen, history), cfg.AllowedOrigins)

	// Step 4: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second, // multipart uploads of several images
		WriteTimeout:   cfg.LLMTimeout + 2*time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		log.Printf("OCR provider: %s, default model: %s", ocr.GetProviderName(), cfg.DefaultModel)
		log.Println("API Endpoints:")
		log.Println("  GET  /info")
		log.Println("  POST /generate")
		log.Println("  GET  /generations")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
