// Package gemini implements llm.Translator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"doctranslate-backend/internal/llm"
	"doctranslate-backend/internal/shared/telemetry"
)

const defaultModel = "gemini-2.0-flash"

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client translates text with a Gemini model.
type Client struct {
	model    string
	generate generateFunc
}

// NewClient builds a Gemini client. An empty model selects the default.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{model: model, generate: client.Models.GenerateContent}, nil
}

// Translate asks the model for a translation and concatenates the text parts
// of the first candidate.
func (c *Client) Translate(ctx context.Context, input llm.TranslateInput) (string, error) {
	prompt := llm.SystemPrompt() + "\n\n" + llm.UserPrompt(input)
	result, err := c.generate(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", mapError(err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	telemetry.Info("llm.response", map[string]any{
		"provider": "gemini",
		"model":    c.model,
		"language": input.Language,
	})
	return text, nil
}

// mapError turns an API failure into an llm.StatusError so callers can
// classify it by HTTP status.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		msg := apiErr.Status
		if apiErr.Message != "" {
			msg = strings.TrimSpace(msg + " " + apiErr.Message)
		}
		return &llm.StatusError{Provider: "gemini", Status: apiErr.Code, Message: msg}
	}
	return fmt.Errorf("gemini generate content: %w", err)
}

var _ llm.Translator = (*Client)(nil)
