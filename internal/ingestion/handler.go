package ingestion

import (
	"errors"
	"net/http"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"docstore-backend/internal/docs"
	"docstore-backend/internal/shared/server/respond"
)

const maxUploadSize = 32 << 20 // 32MB

// Handler exposes CSV import endpoints.
type Handler struct {
	Svc  *docs.Service
	Disk *DiskClient
}

// NewHandler constructs a Handler.
func NewHandler(svc *docs.Service, disk *DiskClient) *Handler {
	return &Handler{Svc: svc, Disk: disk}
}

// RegisterRoutes attaches ingestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingestion/upload-from-file", h.uploadFromFile)
	rg.POST("/ingestion/upload-from-disk", h.uploadFromDisk)
}

// importResponse reports the outcome of a CSV import.
type importResponse struct {
	Created       int `json:"created"`
	IndexFailures int `json:"indexFailures"`
}

func (h *Handler) uploadFromFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	separator, ok := parseSeparator(c, c.PostForm("separator"))
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	documents, err := ParseCSV(file, separator)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	h.importDocuments(c, documents)
}

type uploadFromDiskRequest struct {
	DiskLink  string `json:"diskLink"`
	Separator string `json:"separator"`
}

// Validate checks the request body.
func (r uploadFromDiskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DiskLink, validation.Required.Error("diskLink is required")),
	)
}

func (h *Handler) uploadFromDisk(c *gin.Context) {
	var req uploadFromDiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	separator, ok := parseSeparator(c, req.Separator)
	if !ok {
		return
	}

	body, err := h.Disk.Download(c.Request.Context(), req.DiskLink)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "download_failed", err.Error(), nil)
		return
	}
	defer body.Close()

	documents, err := ParseCSV(body, separator)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	h.importDocuments(c, documents)
}

func (h *Handler) importDocuments(c *gin.Context, documents []docs.CreateDocument) {
	if len(documents) == 0 {
		respond.JSON(c, http.StatusOK, importResponse{})
		return
	}

	result, err := h.Svc.CreateMany(c.Request.Context(), documents)
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, docs.ErrIndexUnavailable):
			respond.Error(c, http.StatusBadGateway, "index_unavailable", "failed to index documents", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import documents", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, importResponse{
		Created:       result.Created,
		IndexFailures: result.IndexFailures,
	})
}

func parseSeparator(c *gin.Context, raw string) (rune, bool) {
	if raw == "" {
		return ',', true
	}
	if utf8.RuneCountInString(raw) != 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "separator must be a single character", nil)
		return 0, false
	}
	sep, _ := utf8.DecodeRuneInString(raw)
	return sep, true
}
