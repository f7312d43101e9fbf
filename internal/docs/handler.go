package docs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docstore-backend/internal/shared/server/respond"
)

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
	rg.POST("/docs", h.create)
	rg.GET("/docs/search", h.search)
	rg.GET("/docs/:id", h.get)
	rg.DELETE("/docs/:id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), req.toCreate())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrIndexUnavailable):
			respond.Error(c, http.StatusBadGateway, "index_unavailable", "failed to index document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}

	limit := DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > DefaultSearchLimit {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be between 0 and 20", nil)
			return
		}
		limit = parsed
	}

	documents, err := h.Svc.Search(c.Request.Context(), query, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrIndexUnavailable):
			respond.Error(c, http.StatusBadGateway, "index_unavailable", "search index unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "search failed", nil)
		}
		return
	}

	resp := make([]DocumentResponse, 0, len(documents))
	for _, doc := range documents {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrIndexUnavailable):
			respond.Error(c, http.StatusBadGateway, "index_unavailable", "failed to remove index entry", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}

	c.Set("documentId", id)
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
