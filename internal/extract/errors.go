package extract

import (
	"errors"
	"fmt"
)

// Extraction failure reasons.
const (
	ReasonOCRFailed    = "ocr_failed"
	ReasonDecodeFailed = "decode_failed"
	ReasonParseFailed  = "parse_failed"
)

// ErrUnsupportedMediaType is returned for media types with no extraction path.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ExtractionError reports that a supported file could not be turned into text.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return "extraction failed: " + e.Reason
	}
	return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func fail(reason string, err error) error {
	return &ExtractionError{Reason: reason, Err: err}
}
