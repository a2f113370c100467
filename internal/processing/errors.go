package processing

import "errors"

var (
	// ErrNoText indicates a document whose extraction produced no text.
	ErrNoText = errors.New("document has no text content to process")
	// ErrUnsupportedLanguage indicates a target language outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported target language")
)
