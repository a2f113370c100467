package documents

import "context"

// Repo persists documents and their derived artifacts. Translations and
// summaries are unique per (document, language); the CreateIfAbsent methods
// return the stored row and whether this call created it.
type Repo interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context) ([]Document, error)
	MarkProcessed(ctx context.Context, id int64) error

	GetTranslation(ctx context.Context, documentID int64, language string) (Translation, error)
	ListTranslations(ctx context.Context, documentID int64) ([]Translation, error)
	CreateTranslationIfAbsent(ctx context.Context, t Translation) (Translation, bool, error)

	GetSummary(ctx context.Context, documentID int64, scope string) (Summary, error)
	CreateSummaryIfAbsent(ctx context.Context, s Summary) (Summary, bool, error)
}
