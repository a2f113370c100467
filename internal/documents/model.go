package documents

import (
	"strings"
	"time"
)

// ScopeOriginal is the only summary scope: summaries are always of the
// source text.
const ScopeOriginal = "original"

// Document is an uploaded file and the text extracted from it.
type Document struct {
	ID           int64
	FileName     string
	FileType     string
	FileSize     int64
	OriginalText *string
	Processed    bool
	StorageKey   string
	Checksum     string
	UploadedAt   time.Time
}

// HasText reports whether extraction produced any non-blank text.
func (d Document) HasText() bool {
	return d.OriginalText != nil && strings.TrimSpace(*d.OriginalText) != ""
}

// Translation is the translated text of a document in one language.
type Translation struct {
	ID             int64     `json:"id"`
	DocumentID     int64     `json:"documentId"`
	Language       string    `json:"language"`
	TranslatedText string    `json:"translatedText"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary is the extractive summary of a document for one scope.
type Summary struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"documentId"`
	Language   string    `json:"language"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"createdAt"`
}
