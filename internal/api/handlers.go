// handlers.go - HTTP handlers for model listing, article generation and the audit log

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/bosocmputer/ghostwriter/internal/ai"
	"github.com/bosocmputer/ghostwriter/internal/processor"
	"github.com/bosocmputer/ghostwriter/internal/storage"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GenerationHistory lists recent audit records
type GenerationHistory interface {
	RecentGenerations(ctx context.Context, limit int64) ([]storage.GenerationRecord, error)
}

// Handler holds the read-only dependencies shared by all requests
type Handler struct {
	gen     *Generator
	history GenerationHistory
}

// NewHandler creates the HTTP handlers. history may be nil when the audit log is disabled.
func NewHandler(gen *Generator, history GenerationHistory) *Handler {
	return &Handler{gen: gen, history: history}
}

// InfoHandler handles GET /info
func (h *Handler) InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"available_models": h.gen.Models.IDs(),
	})
}

// GenerateHandler handles POST /generate (multipart: files[], model)
func (h *Handler) GenerateHandler(c *gin.Context) {
	debugMode := c.Query("debug") == "true"
	renderHTML := c.Query("format") == "html"

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": "multipart form with files and model is required",
		})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "files field is required"})
		return
	}
	models := form.Value["model"]
	if len(models) == 0 || models[0] == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "model field is required"})
		return
	}

	docs := make([]ai.Document, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		doc, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		docs = append(docs, doc)
	}

	result, err := h.gen.Generate(c.Request.Context(), docs, models[0])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoText) {
			status = http.StatusBadRequest
		}
		body := gin.H{"detail": err.Error()}
		if debugMode {
			addDebugFields(body, result)
		}
		c.JSON(status, body)
		return
	}

	body := gin.H{"result": result.Article}
	if renderHTML {
		html, err := processor.RenderMarkdown(result.Article)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("failed to render markdown: %v", err)})
			return
		}
		body["html"] = html
		body["title"] = processor.ExtractTitle(result.Article)
	}
	if debugMode {
		addDebugFields(body, result)
		if result.Tokens != nil {
			body["token_usage"] = result.Tokens
		}
	}
	c.JSON(http.StatusOK, body)
}

// ListGenerationsHandler handles GET /generations?limit=N
func (h *Handler) ListGenerationsHandler(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "generation log is disabled (MONGO_URI not set)"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	records, err := h.history.RecentGenerations(c.Request.Context(), int64(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"generations": records})
}

func addDebugFields(body gin.H, result *GenerateResult) {
	if result == nil {
		return
	}
	body["request_id"] = result.RequestID
	body["model"] = result.Model
	body["documents"] = result.Documents
	if result.Summary != nil {
		body["processing_summary"] = result.Summary
	}
}

// readUpload loads one multipart file into memory
func readUpload(fh *multipart.FileHeader) (ai.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return ai.Document{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ai.Document{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}

	return ai.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
