package documents

import "errors"

var (
	// ErrNotFound indicates a missing document or artifact.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a malformed upload.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedMediaType indicates a file type with no extraction path.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrTooLarge indicates an upload over the size limit.
	ErrTooLarge = errors.New("file too large")
)
