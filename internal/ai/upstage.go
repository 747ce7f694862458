// upstage.go - Upstage document digitization client for OCR processing

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/bosocmputer/ghostwriter/internal/common"
)

// upstageOCRModel is the fixed "model" form value for document digitization
const upstageOCRModel = "ocr"

// UpstageProvider implements OCRProvider using the Upstage document-digitization endpoint
type UpstageProvider struct {
	apiKey string
	ocrURL string
	client *http.Client
}

// NewUpstageProvider creates a new Upstage OCR provider
func NewUpstageProvider(apiKey, ocrURL string, timeout time.Duration) *UpstageProvider {
	return &UpstageProvider{
		apiKey: apiKey,
		ocrURL: ocrURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetProviderName returns "upstage"
func (u *UpstageProvider) GetProviderName() string {
	return "upstage"
}

type upstageOCRResponse struct {
	Text           string `json:"text"`
	NumBilledPages int    `json:"numBilledPages"`
}

// ExtractText uploads the document and returns the "text" field of the response
func (u *UpstageProvider) ExtractText(ctx context.Context, doc Document, reqCtx *common.RequestContext) (string, error) {
	body, contentType, err := buildUpstageForm(doc)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.ocrURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", u.apiKey))

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &OCRError{Provider: u.GetProviderName(), StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed upstageOCRResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OCR response: %w", err)
	}

	reqCtx.LogInfo("📄 %s: %d characters extracted (%d billed page(s))", doc.Filename, len(parsed.Text), parsed.NumBilledPages)
	return parsed.Text, nil
}

// buildUpstageForm writes {document: (filename, bytes, content-type), model: "ocr"}
func buildUpstageForm(doc Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename="%s"`, escapeQuotes(doc.Filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("model", upstageOCRModel); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
