// Package extract converts uploaded files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"doctranslate-backend/internal/ocr"
)

// Supported media types besides image/*.
const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor dispatches on media type. Images go through the OCR engine.
type Extractor struct {
	OCR ocr.Engine
}

// New returns an Extractor backed by engine. A nil engine rejects images.
func New(engine ocr.Engine) *Extractor {
	if engine == nil {
		engine = ocr.Unconfigured{}
	}
	return &Extractor{OCR: engine}
}

// IsSupported reports whether mediaType (already normalized) can be extracted.
func IsSupported(mediaType string) bool {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return true
	case mediaType == MimeText, mediaType == MimePDF, mediaType == MimeDOCX:
		return true
	default:
		return false
	}
}

// Extract returns the plain text of data. Failures on supported types are
// *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		text, err := e.OCR.Recognize(ctx, data, mediaType)
		if err != nil {
			return "", fail(ReasonOCRFailed, err)
		}
		return strings.TrimSpace(text), nil
	case mediaType == MimeText:
		text, err := decodeText(data)
		if err != nil {
			return "", fail(ReasonDecodeFailed, err)
		}
		return text, nil
	case mediaType == MimePDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", fail(ReasonParseFailed, err)
		}
		return text, nil
	case mediaType == MimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", fail(ReasonParseFailed, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// decodeText honours UTF-8 and UTF-16 byte order marks. Input without a
// UTF-16 BOM must be valid UTF-8.
func decodeText(data []byte) (string, error) {
	utf16BOM := bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
	if !utf16BOM && !utf8.Valid(data) {
		return "", errors.New("invalid utf-8")
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: %v", r)
		}
	}()
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return docxText(rc)
}

// docxText collects character data, breaking lines at paragraphs and
// explicit breaks.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// NormalizeMediaType strips parameters and lowercases mediaType. Generic
// types are refined from the file content or extension.
func NormalizeMediaType(mediaType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
	switch clean {
	case "application/zip", "application/x-zip-compressed":
		if isDOCXArchive(data) {
			return MimeDOCX
		}
		return clean
	case "", "application/octet-stream":
		if byExt := mediaTypeFromExt(fileName); byExt != "" {
			return byExt
		}
		return clean
	default:
		return clean
	}
}

func mediaTypeFromExt(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt":
		return MimeText
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return ""
	}
}

func isDOCXArchive(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
