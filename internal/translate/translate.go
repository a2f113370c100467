// Package translate turns extracted text into a target language. A live
// provider is preferred; without one, or when it fails, a phrase dictionary
// produces a demonstration translation. Translate never returns an error.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doctranslate-backend/internal/llm"
	"doctranslate-backend/internal/shared/metrics"
	"doctranslate-backend/internal/shared/telemetry"
	"doctranslate-backend/internal/shared/util"
)

const (
	// DefaultTimeout bounds a provider call including its retry.
	DefaultTimeout = 8 * time.Second

	demoNotice = "[अनुवाद प्रदर्शन - This is a demonstration translation]"
)

var errEmptyTranslation = errors.New("provider returned empty translation")

// Service implements the layered translation strategy.
type Service struct {
	provider llm.Translator
	timeout  time.Duration
	// substitute is the dictionary stage; tests replace it.
	substitute func(text string, lang Language) string
}

// NewService builds a Service. A nil provider means dictionary-only mode.
func NewService(provider llm.Translator, timeout time.Duration) (*Service, error) {
	dicts, err := DefaultDictionaries()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	substitute := func(text string, lang Language) string {
		return dicts[lang.Code].Substitute(text)
	}
	return &Service{provider: provider, timeout: timeout, substitute: substitute}, nil
}

// Live reports whether an external provider is configured.
func (s *Service) Live() bool {
	return s.provider != nil
}

// Translate returns text rendered in the language identified by code.
func (s *Service) Translate(ctx context.Context, text, code string) string {
	lang, ok := Lookup(code)
	if !ok {
		return genericFallback(code, text)
	}

	if s.provider != nil {
		out, err := s.callProvider(ctx, text, lang)
		if err == nil {
			return lang.Header + "\n\n" + out
		}
		telemetry.Warn("translate.fallback", map[string]any{
			"language": lang.Code,
			"error":    util.SanitizeError(err),
		})
	}
	metrics.IncTranslationFallback()
	return s.fallback(text, lang)
}

func (s *Service) callProvider(ctx context.Context, text string, lang Language) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := llm.TranslateInput{Text: text, Language: lang.Code, LanguageName: lang.Name}
	out, err := retryOnce(ctx, func(ctx context.Context) (string, error) {
		res, err := s.provider.Translate(ctx, input)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(res) == "" {
			return "", errEmptyTranslation
		}
		return res, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *Service) fallback(text string, lang Language) (result string) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("translate.dictionary_failed", map[string]any{
				"language": lang.Code,
				"error":    fmt.Sprint(r),
			})
			result = unavailable(lang, text)
		}
	}()
	translated := s.substitute(text, lang)
	return lang.Header + "\n\n" + translated + "\n\n" + demoNotice
}

// unavailable is the last resort: the language's localized notice, or the
// untranslated text under a generic tag when it has none.
func unavailable(lang Language, text string) string {
	if lang.Unavailable != "" {
		return lang.Unavailable
	}
	return genericFallback(lang.Code, text)
}

func genericFallback(code, text string) string {
	return "Translation to " + code + ":\n\n" + text
}
