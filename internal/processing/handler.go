package processing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"doctranslate-backend/internal/documents"
	"doctranslate-backend/internal/shared/server/respond"
	"doctranslate-backend/internal/translate"
)

// Handler exposes the process endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the process route. Extra middleware, such as a
// rate limiter, runs before the handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.process)
	rg.POST("/documents/:id/process", handlers...)
}

type processRequest struct {
	TargetLanguage string `json:"targetLanguage"`
	Summarize      bool   `json:"summarize"`
}

type processResponse struct {
	Document    documents.DocumentResponse `json:"document"`
	Translation documents.Translation      `json:"translation"`
	Summary     *documents.Summary         `json:"summary"`
}

func (h *Handler) process(c *gin.Context) {
	id, ok := documents.ParseID(c)
	if !ok {
		return
	}

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.TargetLanguage = strings.TrimSpace(req.TargetLanguage)
	if req.TargetLanguage == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "targetLanguage is required", nil)
		return
	}
	c.Set("targetLanguage", req.TargetLanguage)

	result, err := h.Svc.Process(c.Request.Context(), id, req.TargetLanguage, req.Summarize)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrUnsupportedLanguage):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported targetLanguage",
				gin.H{"supported": supportedCodes()})
		case errors.Is(err, ErrNoText):
			respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
		}
		return
	}

	respond.OK(c, processResponse{
		Document:    documents.ToResponse(result.Document),
		Translation: result.Translation,
		Summary:     result.Summary,
	})
}

func supportedCodes() []string {
	langs := translate.Languages()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}
