package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
	"github.com/fkoehler/kickflow/internal/service"
)

// ImportHandler handles import submission and status endpoints.
type ImportHandler struct {
	imports      *service.ImportService
	async        bool
	maxFileBytes int64
}

// NewImportHandler creates a new import handler.
// Parameters:
//   - imports: import pipeline coordinator.
//   - async: when true, file processing runs in a background goroutine and
//     the upload endpoint returns 202 with the batch ID.
//   - maxFileBytes: upload size cap in bytes.
// Returns:
//   - *ImportHandler: initialized handler.
func NewImportHandler(imports *service.ImportService, async bool, maxFileBytes int64) *ImportHandler {
	return &ImportHandler{
		imports:      imports,
		async:        async,
		maxFileBytes: maxFileBytes,
	}
}

// recordsRequest is the body of POST /api/v1/imports/records.
type recordsRequest struct {
	Source  string                   `json:"source" binding:"required"`
	Records []map[string]interface{} `json:"records" binding:"required"`
}

// UploadFile handles POST /api/v1/imports.
// Accepts a multipart file plus a source_type form field and runs the
// import pipeline on the file contents.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) UploadFile(c *gin.Context) {
	sourceLabel := c.PostForm("source_type")
	if sourceLabel == "" {
		sourceLabel = c.PostForm("source")
	}
	if sourceLabel == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "source_type is required",
		})
		return
	}
	source, _ := domain.ParseSourceType(sourceLabel)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file is required",
		})
		return
	}
	if h.maxFileBytes > 0 && fileHeader.Size > h.maxFileBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file exceeds the upload size limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to open uploaded file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file: " + err.Error(),
		})
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	ctx := c.Request.Context()

	batch, err := h.imports.CreateBatch(ctx, source, filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create import batch: " + err.Error(),
		})
		return
	}

	if h.async {
		// Detach from the request context so processing survives the response.
		bgCtx := logger.FromContext(ctx).WithContext(context.Background())
		go func() {
			if _, err := h.imports.ProcessFile(bgCtx, batch.ID, source, filename, content); err != nil {
				logger.CtxError(bgCtx, "async import %s failed: %v", batch.ID, err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{
			"batch_id": batch.ID,
			"status":   batch.Status,
		})
		return
	}

	result, err := h.imports.ProcessFile(ctx, batch.ID, source, filename, content)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"batch_id": batch.ID,
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitRecords handles POST /api/v1/imports/records.
// Accepts pre-parsed records and runs validation, transformation, and
// persistence synchronously.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) SubmitRecords(c *gin.Context) {
	var req recordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "records must not be empty",
		})
		return
	}

	source, _ := domain.ParseSourceType(req.Source)
	ctx := c.Request.Context()

	batch, err := h.imports.CreateBatch(ctx, source, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create import batch: " + err.Error(),
		})
		return
	}

	result, err := h.imports.ProcessRecords(ctx, batch.ID, source, req.Records)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"batch_id": batch.ID,
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBatch handles GET /api/v1/imports/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) GetBatch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Batch ID is required",
		})
		return
	}

	batch, err := h.imports.BatchStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Import batch not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":    batch,
		"progress": batch.Progress(),
	})
}
