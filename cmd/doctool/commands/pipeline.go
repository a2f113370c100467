package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"doctranslate-backend/internal/bootstrap"
	"doctranslate-backend/internal/documents"
	"doctranslate-backend/internal/extract"
	"doctranslate-backend/internal/processing"
	"doctranslate-backend/internal/shared/config"
	"doctranslate-backend/internal/summarize"
	"doctranslate-backend/internal/translate"
)

// pipeline is the in-process upload and process path used by the CLI.
// Each run gets its own in-memory repo, so a long watch session does not
// accumulate documents.
type pipeline struct {
	extractor  *extract.Extractor
	translator *translate.Service
	maxUpload  int64
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	cfg := config.Load()
	extractor, err := bootstrap.BuildExtractor(cfg)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	translator, err := bootstrap.BuildTranslator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build translator: %w", err)
	}
	return &pipeline{extractor: extractor, translator: translator, maxUpload: cfg.MaxUploadBytes}, nil
}

// run extracts path and translates it into lang.
func (p *pipeline) run(ctx context.Context, path, lang string, withSummary bool) (processing.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return processing.Result{}, fmt.Errorf("read file: %w", err)
	}
	repo := documents.NewMemoryRepo()
	docs := &documents.Service{Repo: repo, Extractor: p.extractor, MaxUploadBytes: p.maxUpload}
	proc := processing.NewService(repo, p.translator, summarize.Extractive{})

	name := filepath.Base(path)
	doc, err := docs.Upload(ctx, name, mime.TypeByExtension(filepath.Ext(name)), data)
	if err != nil {
		return processing.Result{}, fmt.Errorf("extract %s: %w", name, err)
	}
	result, err := proc.Process(ctx, doc.ID, lang, withSummary)
	if err != nil {
		return processing.Result{}, fmt.Errorf("process %s: %w", name, err)
	}
	return result, nil
}
