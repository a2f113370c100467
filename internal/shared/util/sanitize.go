package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

// maxFileNameRunes caps names used inside storage keys.
const maxFileNameRunes = 120

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName turns an uploaded file name into a single key segment.
// Separators become underscores, whitespace runs collapse to one
// underscore and control characters are dropped. Long names are cut
// keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\':
			flushSpace(&b, &pendingSpace)
			b.WriteRune('_')
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r):
		default:
			flushSpace(&b, &pendingSpace)
			b.WriteRune(r)
		}
	}

	s := b.String()
	if strings.Trim(s, "_.") == "" {
		return "", errInvalidFileName
	}
	return truncateName(s), nil
}

func flushSpace(b *strings.Builder, pending *bool) {
	if *pending {
		b.WriteRune('_')
		*pending = false
	}
}

func truncateName(s string) string {
	runes := []rune(s)
	if len(runes) <= maxFileNameRunes {
		return s
	}
	ext := []rune(filepath.Ext(s))
	if len(ext) >= maxFileNameRunes/2 {
		ext = nil
	}
	return string(runes[:maxFileNameRunes-len(ext)]) + string(ext)
}
