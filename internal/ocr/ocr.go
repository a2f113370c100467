// Package ocr talks to the optical character recognition engine.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no OCR engine is available.
var ErrNotConfigured = errors.New("ocr engine not configured")

// Engine recognizes text in an image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, mediaType string) (string, error)
}

// Unconfigured rejects every request.
type Unconfigured struct{}

// Recognize returns ErrNotConfigured.
func (Unconfigured) Recognize(context.Context, []byte, string) (string, error) {
	return "", ErrNotConfigured
}

// HTTPClient posts raw image bytes to an OCR service that answers with
// {"text": "...", "error": "..."}.
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClient builds an HTTPClient for url.
func NewHTTPClient(url string, timeout time.Duration) (*HTTPClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{url: url, httpClient: &http.Client{Timeout: timeout}}, nil
}

type recognizeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize sends image to the OCR service.
func (c *HTTPClient) Recognize(ctx context.Context, image []byte, mediaType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mediaType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("ocr read: %w", err)
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("ocr http status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("ocr response parse: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ocr error: %s", parsed.Error)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("ocr http status %d", resp.StatusCode)
	}
	return parsed.Text, nil
}

var (
	_ Engine = Unconfigured{}
	_ Engine = (*HTTPClient)(nil)
)
