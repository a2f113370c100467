package openai

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

	"doctranslate-backend/internal/llm"
	"doctranslate-backend/internal/shared/telemetry"
)

const defaultModel = "gpt-4o-mini"

// maxResponseBytes bounds how much of a reply is read.
const maxResponseBytes = 4 << 20

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client translates through the OpenAI Chat Completions API.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient needs an API key. An empty model selects defaultModel and a
// non-positive timeout means 30s.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Translate asks the chat model for a translation at temperature 0. Non-2xx
// replies come back as *llm.StatusError.
func (c *Client) Translate(ctx context.Context, input llm.TranslateInput) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt()},
			{Role: "user", Content: llm.UserPrompt(input)},
		},
	})
	if err != nil {
		return "", err
	}

	parsed, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai response has no choices")
	}
	choice := parsed.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", errors.New("openai response content is empty")
	}

	fields := map[string]any{
		"provider":      "openai",
		"model":         c.model,
		"language":      input.Language,
		"finish_reason": choice.FinishReason,
	}
	if u := parsed.Usage; u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["completion_tokens"] = u.CompletionTokens
		fields["total_tokens"] = u.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return content, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (chatResponse, error) {
	var parsed chatResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return parsed, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parsed, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return parsed, fmt.Errorf("openai read response: %w", err)
	}
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &llm.StatusError{Provider: "openai", Status: resp.StatusCode}
		if decodeErr == nil && parsed.Error != nil {
			statusErr.Message = parsed.Error.Message
		}
		return parsed, statusErr
	}
	if decodeErr != nil {
		return parsed, fmt.Errorf("openai response parse: %w", decodeErr)
	}
	if parsed.Error != nil {
		return parsed, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	return parsed, nil
}

var _ llm.Translator = (*Client)(nil)
