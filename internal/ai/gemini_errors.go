// gemini_errors.go - Error categorisation for Gemini OCR calls

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// GeminiError represents a categorized Gemini API error
type GeminiError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
}

func (e *GeminiError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d)", e.Category, e.Message, e.StatusCode)
}

func (e *GeminiError) Unwrap() error {
	return e.OriginalError
}

// categorizeGeminiError maps an API error to a category used in logs and error text
func categorizeGeminiError(err error) *GeminiError {
	if err == nil {
		return nil
	}

	geminiErr := &GeminiError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		geminiErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			geminiErr.Category = "bad_request"
			geminiErr.Message = "Invalid request format or parameters"
		case 401:
			geminiErr.Category = "unauthorized"
			geminiErr.Message = "Invalid API key or authentication failed"
		case 403:
			geminiErr.Category = "forbidden"
			geminiErr.Message = "API key lacks required permissions"
		case 404:
			geminiErr.Category = "not_found"
			geminiErr.Message = "Model not found or invalid endpoint"
		case 413:
			geminiErr.Category = "payload_too_large"
			geminiErr.Message = "Request size exceeds limit (reduce image size)"
		case 429:
			geminiErr.Category = "rate_limit"
			geminiErr.Message = "Rate limit exceeded - too many requests"
		case 500, 502, 503, 504:
			geminiErr.Category = "server_error"
			geminiErr.Message = fmt.Sprintf("Gemini server error (%d)", apiErr.Code)
		default:
			geminiErr.Category = "unknown_api_error"
			geminiErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
		}

		return geminiErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		geminiErr.Category = "timeout"
		geminiErr.Message = "Request timeout - processing took too long"
		return geminiErr
	case errors.Is(err, context.Canceled):
		geminiErr.Category = "canceled"
		geminiErr.Message = "Request was canceled"
		return geminiErr
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "quota") {
		geminiErr.Category = "quota_exceeded"
		geminiErr.Message = "API quota exceeded - daily or monthly limit reached"
		return geminiErr
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") {
		geminiErr.Category = "network_error"
		geminiErr.Message = "Network connection error"
		return geminiErr
	}

	return geminiErr
}
