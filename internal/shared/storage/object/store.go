package object

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"doctranslate-backend/internal/shared/util"
)

// ErrNotFound is returned by Open for unknown keys. Deleting an unknown key
// succeeds.
var ErrNotFound = errors.New("object not found")

// ObjectStore keeps the raw bytes of uploaded documents.
type ObjectStore interface {
	Save(ctx context.Context, namespace, fileName, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey returns "<namespace>/<uuid>_<name>", with the uploaded name made
// safe for use as a key segment.
func NewKey(namespace, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("storage key for %q: %w", fileName, err)
	}
	key := uuid.NewString() + "_" + name
	if namespace != "" {
		key = namespace + "/" + key
	}
	return key, nil
}
