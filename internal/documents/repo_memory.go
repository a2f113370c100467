package documents

import (
	"context"
	"sync"
	"time"
)

type artifactKey struct {
	documentID int64
	language   string
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu sync.RWMutex

	docs     []Document
	docIndex map[int64]int

	translations map[artifactKey]Translation
	byDocument   map[int64][]artifactKey
	summaries    map[artifactKey]Summary

	nextDocID         int64
	nextTranslationID int64
	nextSummaryID     int64

	now func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docIndex:     make(map[int64]int),
		translations: make(map[artifactKey]Translation),
		byDocument:   make(map[int64][]artifactKey),
		summaries:    make(map[artifactKey]Summary),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create stores doc under the next id.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextDocID++
	doc.ID = r.nextDocID
	doc.Processed = false
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = r.now()
	}
	doc = cloneDocument(doc)
	r.docIndex[doc.ID] = len(r.docs)
	r.docs = append(r.docs, doc)
	return cloneDocument(doc), nil
}

// cloneDocument copies the text pointer so callers never share stored state.
func cloneDocument(doc Document) Document {
	if doc.OriginalText != nil {
		text := *doc.OriginalText
		doc.OriginalText = &text
	}
	return doc
}

// GetByID returns a document by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.docIndex[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(r.docs[idx]), nil
}

// List returns all documents in insertion order.
func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, len(r.docs))
	for i, doc := range r.docs {
		out[i] = cloneDocument(doc)
	}
	return out, nil
}

// MarkProcessed sets the processed flag. Repeated calls are no-ops.
func (r *MemoryRepo) MarkProcessed(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.docIndex[id]
	if !ok {
		return ErrNotFound
	}
	r.docs[idx].Processed = true
	return nil
}

// GetTranslation returns the translation of a document into language.
func (r *MemoryRepo) GetTranslation(ctx context.Context, documentID int64, language string) (Translation, error) {
	if err := ctx.Err(); err != nil {
		return Translation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.translations[artifactKey{documentID, language}]
	if !ok {
		return Translation{}, ErrNotFound
	}
	return t, nil
}

// ListTranslations returns a document's translations in creation order.
func (r *MemoryRepo) ListTranslations(ctx context.Context, documentID int64) ([]Translation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := r.byDocument[documentID]
	out := make([]Translation, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.translations[k])
	}
	return out, nil
}

// CreateTranslationIfAbsent stores t unless one exists for its key.
func (r *MemoryRepo) CreateTranslationIfAbsent(ctx context.Context, t Translation) (Translation, bool, error) {
	if err := ctx.Err(); err != nil {
		return Translation{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docIndex[t.DocumentID]; !ok {
		return Translation{}, false, ErrNotFound
	}
	key := artifactKey{t.DocumentID, t.Language}
	if existing, ok := r.translations[key]; ok {
		return existing, false, nil
	}
	r.nextTranslationID++
	t.ID = r.nextTranslationID
	t.CreatedAt = r.now()
	r.translations[key] = t
	r.byDocument[t.DocumentID] = append(r.byDocument[t.DocumentID], key)
	return t, true, nil
}

// GetSummary returns the summary of a document for scope.
func (r *MemoryRepo) GetSummary(ctx context.Context, documentID int64, scope string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[artifactKey{documentID, scope}]
	if !ok {
		return Summary{}, ErrNotFound
	}
	return s, nil
}

// CreateSummaryIfAbsent stores s unless one exists for its key.
func (r *MemoryRepo) CreateSummaryIfAbsent(ctx context.Context, s Summary) (Summary, bool, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docIndex[s.DocumentID]; !ok {
		return Summary{}, false, ErrNotFound
	}
	key := artifactKey{s.DocumentID, s.Language}
	if existing, ok := r.summaries[key]; ok {
		return existing, false, nil
	}
	r.nextSummaryID++
	s.ID = r.nextSummaryID
	s.CreatedAt = r.now()
	r.summaries[key] = s
	return s, true, nil
}

var _ Repo = (*MemoryRepo)(nil)
