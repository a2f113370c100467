package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"doctranslate-backend/internal/extract"
	"doctranslate-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for boundaries and part headers around the
// file itself.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
}

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.Svc.maxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondTooLarge(c, limit)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > limit {
		respondTooLarge(c, limit)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		var extractionErr *extract.ExtractionError
		switch {
		case errors.Is(err, ErrTooLarge):
			respondTooLarge(c, limit)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnsupportedMediaType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error(), nil)
		case errors.As(err, &extractionErr):
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "failed to extract text from file",
				gin.H{"reason": extractionErr.Reason})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	location := strings.TrimSuffix(c.FullPath(), "/upload") + "/documents/" + strconv.FormatInt(doc.ID, 10)
	respond.Created(c, location, gin.H{"document": ToResponse(doc)})
}

func respondTooLarge(c *gin.Context, limit int64) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit",
		gin.H{"maxBytes": limit})
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, ToResponse(doc))
	}
	respond.OK(c, gin.H{"documents": resp})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	doc, translations, summary, err := h.Svc.Detail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}
	if translations == nil {
		translations = []Translation{}
	}

	respond.OK(c, DetailResponse{
		Document:     ToResponse(doc),
		Translations: translations,
		Summary:      summary,
	})
}
