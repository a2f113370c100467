package documents

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, file_name, file_type, file_size, original_text, processed, storage_key, checksum, uploaded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var originalText sql.NullString
	var storageKey sql.NullString
	var checksum sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.FileType,
		&doc.FileSize,
		&originalText,
		&doc.Processed,
		&storageKey,
		&checksum,
		&doc.UploadedAt,
	); err != nil {
		return Document{}, err
	}
	if originalText.Valid {
		text := originalText.String
		doc.OriginalText = &text
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if checksum.Valid {
		doc.Checksum = checksum.String
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Create inserts a new document and returns it with its assigned id.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (file_name, file_type, file_size, original_text, processed, storage_key, checksum)
VALUES ($1, $2, $3, $4, FALSE, $5, $6)
RETURNING id, uploaded_at`

	var originalText sql.NullString
	if doc.OriginalText != nil {
		originalText = sql.NullString{String: *doc.OriginalText, Valid: true}
	}
	err := r.DB.QueryRowContext(
		ctx,
		query,
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		originalText,
		nullString(doc.StorageKey),
		nullString(doc.Checksum),
	).Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return Document{}, err
	}
	doc.Processed = false
	return doc, nil
}

// GetByID fetches a document by id.
func (r *PGRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns every document in id order.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// MarkProcessed sets the processed flag.
func (r *PGRepo) MarkProcessed(ctx context.Context, id int64) error {
	const query = `UPDATE documents SET processed = TRUE WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTranslation returns the translation of a document into language.
func (r *PGRepo) GetTranslation(ctx context.Context, documentID int64, language string) (Translation, error) {
	const query = `
SELECT id, document_id, language, translated_text, created_at
FROM translations
WHERE document_id = $1 AND language = $2`
	var t Translation
	err := r.DB.QueryRowContext(ctx, query, documentID, language).Scan(
		&t.ID, &t.DocumentID, &t.Language, &t.TranslatedText, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Translation{}, ErrNotFound
		}
		return Translation{}, err
	}
	return t, nil
}

// ListTranslations returns a document's translations in creation order.
func (r *PGRepo) ListTranslations(ctx context.Context, documentID int64) ([]Translation, error) {
	const query = `
SELECT id, document_id, language, translated_text, created_at
FROM translations
WHERE document_id = $1
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Translation{}
	for rows.Next() {
		var t Translation
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.Language, &t.TranslatedText, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTranslationIfAbsent inserts t unless a row already exists for its
// (document, language) pair, in which case the stored row is returned.
func (r *PGRepo) CreateTranslationIfAbsent(ctx context.Context, t Translation) (Translation, bool, error) {
	const query = `
INSERT INTO translations (document_id, language, translated_text)
VALUES ($1, $2, $3)
ON CONFLICT (document_id, language) DO NOTHING
RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, t.DocumentID, t.Language, t.TranslatedText).Scan(&t.ID, &t.CreatedAt)
	switch {
	case err == nil:
		return t, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.GetTranslation(ctx, t.DocumentID, t.Language)
		return existing, false, err
	default:
		return Translation{}, false, mapWriteError(err)
	}
}

// GetSummary returns the summary of a document for scope.
func (r *PGRepo) GetSummary(ctx context.Context, documentID int64, scope string) (Summary, error) {
	const query = `
SELECT id, document_id, language, summary, created_at
FROM summaries
WHERE document_id = $1 AND language = $2`
	var s Summary
	err := r.DB.QueryRowContext(ctx, query, documentID, scope).Scan(
		&s.ID, &s.DocumentID, &s.Language, &s.Summary, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrNotFound
		}
		return Summary{}, err
	}
	return s, nil
}

// CreateSummaryIfAbsent inserts s unless a row already exists for its key.
func (r *PGRepo) CreateSummaryIfAbsent(ctx context.Context, s Summary) (Summary, bool, error) {
	const query = `
INSERT INTO summaries (document_id, language, summary)
VALUES ($1, $2, $3)
ON CONFLICT (document_id, language) DO NOTHING
RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, s.DocumentID, s.Language, s.Summary).Scan(&s.ID, &s.CreatedAt)
	switch {
	case err == nil:
		return s, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.GetSummary(ctx, s.DocumentID, s.Language)
		return existing, false, err
	default:
		return Summary{}, false, mapWriteError(err)
	}
}

// mapWriteError turns a dangling document reference into ErrNotFound.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrNotFound
	}
	return err
}

var _ Repo = (*PGRepo)(nil)
