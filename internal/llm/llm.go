package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Translator is a remote translation provider.
type Translator interface {
	Translate(ctx context.Context, input TranslateInput) (string, error)
}

// TranslateInput is one translation request.
type TranslateInput struct {
	Text         string
	Language     string
	LanguageName string
}

// StatusError is a non-2xx reply from a provider's HTTP API.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s http status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.Status, e.Message)
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}
