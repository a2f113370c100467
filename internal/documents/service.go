package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doctranslate-backend/internal/extract"
	"doctranslate-backend/internal/shared/metrics"
	"doctranslate-backend/internal/shared/storage/object"
	"doctranslate-backend/internal/shared/telemetry"
	"doctranslate-backend/internal/shared/util"
)

// DefaultMaxUploadBytes caps a single upload.
const DefaultMaxUploadBytes = 10 << 20

const uploadNamespace = "uploads"

// TextExtractor turns raw bytes of a normalized media type into text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (string, error)
}

// Service contains business logic for documents.
type Service struct {
	Repo           Repo
	Store          object.ObjectStore
	Extractor      TextExtractor
	MaxUploadBytes int64
}

// Upload extracts the text of a file and records it as a new document.
// Extraction failures are terminal: nothing is stored.
func (s *Service) Upload(ctx context.Context, fileName, mediaType string, data []byte) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if limit := s.maxUploadBytes(); int64(len(data)) > limit {
		return Document{}, ErrTooLarge
	}

	mediaType = extract.NormalizeMediaType(mediaType, fileName, data)
	if !extract.IsSupported(mediaType) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	text, err := s.Extractor.Extract(ctx, data, mediaType)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedMediaType) {
			return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
		}
		metrics.IncExtractionFailed()
		fields := map[string]any{
			"file_name":  fileName,
			"media_type": mediaType,
			"error":      util.SanitizeError(err),
		}
		var extractionErr *extract.ExtractionError
		if errors.As(err, &extractionErr) {
			fields["reason"] = extractionErr.Reason
		}
		telemetry.Warn("documents.extraction_failed", fields)
		return Document{}, err
	}

	var storageKey string
	if s.Store != nil {
		storageKey, _, err = s.Store.Save(ctx, uploadNamespace, fileName, mediaType, bytes.NewReader(data))
		if err != nil {
			return Document{}, fmt.Errorf("store upload: %w", err)
		}
	}

	doc, err := s.Repo.Create(ctx, Document{
		FileName:     fileName,
		FileType:     mediaType,
		FileSize:     int64(len(data)),
		OriginalText: &text,
		StorageKey:   storageKey,
		Checksum:     util.Checksum(data),
	})
	if err != nil {
		s.discardUpload(storageKey)
		return Document{}, err
	}

	metrics.IncUploads()
	telemetry.Info("documents.uploaded", map[string]any{
		"document_id": doc.ID,
		"media_type":  mediaType,
		"file_size":   doc.FileSize,
		"text_length": len(text),
	})
	return doc, nil
}

// List returns all documents in upload order.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

// Detail returns a document with all of its translations and its summary,
// if one exists.
func (s *Service) Detail(ctx context.Context, id int64) (Document, []Translation, *Summary, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, nil, nil, err
	}
	translations, err := s.Repo.ListTranslations(ctx, id)
	if err != nil {
		return Document{}, nil, nil, err
	}
	summary, err := s.Repo.GetSummary(ctx, id, ScopeOriginal)
	switch {
	case err == nil:
		return doc, translations, &summary, nil
	case errors.Is(err, ErrNotFound):
		return doc, translations, nil, nil
	default:
		return Document{}, nil, nil, err
	}
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// discardUpload removes bytes saved for a document that was never recorded.
func (s *Service) discardUpload(storageKey string) {
	if s.Store == nil || storageKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Warn("documents.orphan_upload", map[string]any{
			"storage_key": storageKey,
			"error":       util.SanitizeError(err),
		})
	}
}
