package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doctranslate-backend/internal/llm"
	"doctranslate-backend/internal/shared/telemetry"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(" ", "", time.Second); err == nil {
		t.Fatalf("expected error for empty api key")
	}
	client, err := NewClient("key", "", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.model != defaultModel {
		t.Fatalf("expected default model, got %q", client.model)
	}
}

func TestTranslateSendsPromptAndReturnsContent(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  नमस्ते दुनिया  "}}],"usage":{"total_tokens":12}}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, err := NewClient("test-key", "gpt-4o-mini", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Translate(context.Background(), llm.TranslateInput{Text: "hello world", Language: "hi", LanguageName: "Hindi"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "नमस्ते दुनिया" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(got.Messages) != 2 || !strings.Contains(got.Messages[1].Content, "Hindi") || !strings.Contains(got.Messages[1].Content, "hello world") {
		t.Fatalf("unexpected request messages %+v", got.Messages)
	}
}

func TestTranslateReportsServerErrors(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, _ := NewClient("test-key", "", time.Second)
	_, err := client.Translate(context.Background(), llm.TranslateInput{Text: "hi", Language: "bn"})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusBadGateway || !statusErr.Temporary() {
		t.Fatalf("expected temporary 502 status error, got %v", err)
	}
}

func TestTranslateReportsAPIErrors(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, _ := NewClient("test-key", "", time.Second)
	_, err := client.Translate(context.Background(), llm.TranslateInput{Text: "hi", Language: "bn"})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) || statusErr.Temporary() || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected permanent api error, got %v", err)
	}
}

func TestTranslateRejectsEmptyChoices(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, _ := NewClient("test-key", "", time.Second)
	if _, err := client.Translate(context.Background(), llm.TranslateInput{Text: "hi", Language: "ta"}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
