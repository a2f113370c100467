package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID           int64     `json:"id"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType"`
	FileSize     int64     `json:"fileSize"`
	OriginalText *string   `json:"originalText"`
	Processed    bool      `json:"processed"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ToResponse maps a Document to its JSON shape.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		FileName:     doc.FileName,
		FileType:     doc.FileType,
		FileSize:     doc.FileSize,
		OriginalText: doc.OriginalText,
		Processed:    doc.Processed,
		UploadedAt:   doc.UploadedAt,
	}
}

// DetailResponse is a document with its derived artifacts.
type DetailResponse struct {
	Document     DocumentResponse `json:"document"`
	Translations []Translation    `json:"translations"`
	Summary      *Summary         `json:"summary"`
}
