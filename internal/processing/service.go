// Package processing orchestrates translation and summarization of stored
// documents. Each (document, language) translation and each (document,
// scope) summary is computed at most once and reused afterwards.
package processing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"doctranslate-backend/internal/documents"
	"doctranslate-backend/internal/shared/metrics"
	"doctranslate-backend/internal/shared/telemetry"
	"doctranslate-backend/internal/translate"
)

// Translator converts text into a target language. It never fails.
type Translator interface {
	Translate(ctx context.Context, text, language string) string
}

// Summarizer produces a summary of text. It never fails.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Result is the outcome of processing a document.
type Result struct {
	Document    documents.Document
	Translation documents.Translation
	Summary     *documents.Summary
}

// Service runs the pipeline against a document repository.
type Service struct {
	Repo       documents.Repo
	Translator Translator
	Summarizer Summarizer

	flights keyed
}

// NewService constructs a Service.
func NewService(repo documents.Repo, translator Translator, summarizer Summarizer) *Service {
	return &Service{Repo: repo, Translator: translator, Summarizer: summarizer}
}

// Process translates a document into language and, when summarize is set,
// summarizes its original text. Stored artifacts are reused. The returned
// document reflects the processed flag.
func (s *Service) Process(ctx context.Context, documentID int64, language string, summarize bool) (Result, error) {
	start := time.Now()

	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Result{}, err
	}
	if !translate.IsSupported(language) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if !doc.HasText() {
		return Result{}, ErrNoText
	}
	text := *doc.OriginalText

	var result Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.translation(gctx, doc.ID, text, language)
		if err != nil {
			return fmt.Errorf("translation: %w", err)
		}
		result.Translation = t
		return nil
	})
	if summarize {
		g.Go(func() error {
			sum, err := s.summary(gctx, doc.ID, text)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			result.Summary = &sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if err := s.Repo.MarkProcessed(ctx, doc.ID); err != nil {
		return Result{}, fmt.Errorf("mark processed: %w", err)
	}
	doc.Processed = true
	result.Document = doc

	elapsed := time.Since(start)
	metrics.ObserveProcessDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("pipeline.completed", map[string]any{
		"document_id": doc.ID,
		"language":    language,
		"summarize":   summarize,
		"duration_ms": elapsed.Milliseconds(),
	})
	return result, nil
}

func (s *Service) translation(ctx context.Context, documentID int64, text, language string) (documents.Translation, error) {
	t, err := s.Repo.GetTranslation(ctx, documentID, language)
	if err == nil {
		metrics.IncTranslationCacheHit()
		logStage("pipeline.translation", documentID, language, true)
		return t, nil
	}
	if !errors.Is(err, documents.ErrNotFound) {
		return documents.Translation{}, err
	}

	key := "translation:" + strconv.FormatInt(documentID, 10) + ":" + language
	t, _, err = do(ctx, &s.flights, key, func(ctx context.Context) (documents.Translation, error) {
		if existing, err := s.Repo.GetTranslation(ctx, documentID, language); err == nil {
			return existing, nil
		}
		translated := s.Translator.Translate(ctx, text, language)
		stored, created, err := s.Repo.CreateTranslationIfAbsent(ctx, documents.Translation{
			DocumentID:     documentID,
			Language:       language,
			TranslatedText: translated,
		})
		if err != nil {
			return documents.Translation{}, err
		}
		if created {
			metrics.IncTranslationComputed()
		}
		logStage("pipeline.translation", documentID, language, !created)
		return stored, nil
	})
	return t, err
}

func (s *Service) summary(ctx context.Context, documentID int64, text string) (documents.Summary, error) {
	sum, err := s.Repo.GetSummary(ctx, documentID, documents.ScopeOriginal)
	if err == nil {
		metrics.IncSummaryCacheHit()
		logStage("pipeline.summary", documentID, documents.ScopeOriginal, true)
		return sum, nil
	}
	if !errors.Is(err, documents.ErrNotFound) {
		return documents.Summary{}, err
	}

	key := "summary:" + strconv.FormatInt(documentID, 10) + ":" + documents.ScopeOriginal
	sum, _, err = do(ctx, &s.flights, key, func(ctx context.Context) (documents.Summary, error) {
		if existing, err := s.Repo.GetSummary(ctx, documentID, documents.ScopeOriginal); err == nil {
			return existing, nil
		}
		stored, created, err := s.Repo.CreateSummaryIfAbsent(ctx, documents.Summary{
			DocumentID: documentID,
			Language:   documents.ScopeOriginal,
			Summary:    s.Summarizer.Summarize(ctx, text),
		})
		if err != nil {
			return documents.Summary{}, err
		}
		if created {
			metrics.IncSummaryComputed()
		}
		logStage("pipeline.summary", documentID, documents.ScopeOriginal, !created)
		return stored, nil
	})
	return sum, err
}

func logStage(msg string, documentID int64, language string, cacheHit bool) {
	telemetry.Info(msg, map[string]any{
		"document_id": documentID,
		"language":    language,
		"cache_hit":   cacheHit,
	})
}
