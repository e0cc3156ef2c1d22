package exports

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formforge/backend/internal/forms"
	"github.com/formforge/backend/internal/middleware"
	"github.com/formforge/backend/internal/models"
	"github.com/formforge/backend/pkg/queue"
	"github.com/formforge/backend/pkg/response"
	"github.com/formforge/backend/pkg/storage"
)

// Handler handles export HTTP endpoints.
type Handler struct {
	repo     *Repository
	formRepo *forms.Repository
	queue    *queue.Queue
	s3       *storage.S3
	logger   *zap.Logger
}

// NewHandler creates an exports handler. s3 may be nil when exports are
// disabled; requests then fail with 503.
func NewHandler(repo *Repository, formRepo *forms.Repository, q *queue.Queue, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, formRepo: formRepo, queue: q, s3: s3, logger: logger}
}

// Create handles POST /forms/:id/export: owner-scoped, enqueues a CSV export job.
func (h *Handler) Create(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if _, err := h.formRepo.GetByID(c.Request.Context(), formID, callerID); err != nil {
		if errors.Is(err, forms.ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("fetch form for export failed", zap.Error(err))
		response.Internal(c, "failed to request export")
		return
	}

	exp := &models.Export{FormID: formID, RequestedBy: callerID}
	if err := h.repo.Create(c.Request.Context(), exp); err != nil {
		h.logger.Error("create export failed", zap.Error(err))
		response.Internal(c, "failed to request export")
		return
	}
	if err := h.queue.EnqueueExport(c.Request.Context(), queue.ExportPayload{ExportID: exp.ID, FormID: formID}); err != nil {
		h.logger.Error("enqueue export failed", zap.Error(err), zap.String("export_id", exp.ID.String()))
		_ = h.repo.MarkFailed(c.Request.Context(), exp.ID, "enqueue failed")
		response.Internal(c, "failed to request export")
		return
	}
	response.Created(c, exp)
}

// ListByForm handles GET /forms/:id/exports, owner-scoped.
func (h *Handler) ListByForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if _, err := h.formRepo.GetByID(c.Request.Context(), formID, callerID); err != nil {
		if errors.Is(err, forms.ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("fetch form for exports failed", zap.Error(err))
		response.Internal(c, "failed to list exports")
		return
	}

	list, err := h.repo.ListByForm(c.Request.Context(), formID)
	if err != nil {
		h.logger.Error("list exports failed", zap.Error(err))
		response.Internal(c, "failed to list exports")
		return
	}
	if list == nil {
		list = []models.Export{}
	}
	response.OK(c, list)
}

// Delete handles DELETE /exports/:id: removes the export row and its S3
// object, owner-scoped through the form join. A failed object delete is
// logged, not surfaced; the row is removed either way.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	exp, err := h.repo.GetOwned(c.Request.Context(), id, callerID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "export not found")
		return
	}
	if err != nil {
		h.logger.Error("get export failed", zap.Error(err))
		response.Internal(c, "failed to delete export")
		return
	}

	if exp.ObjectKey != "" && h.s3 != nil {
		if err := h.s3.DeleteExport(c.Request.Context(), exp.ObjectKey); err != nil {
			h.logger.Warn("delete export object failed", zap.Error(err), zap.String("export_id", id.String()))
		}
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete export failed", zap.Error(err))
		response.Internal(c, "failed to delete export")
		return
	}
	response.NoContent(c)
}

// DownloadURL handles GET /exports/:id/download-url: a presigned S3 GET URL
// for a completed export, owner-scoped through the form join.
func (h *Handler) DownloadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	exp, err := h.repo.GetOwned(c.Request.Context(), id, callerID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "export not found")
		return
	}
	if err != nil {
		h.logger.Error("get export failed", zap.Error(err))
		response.Internal(c, "failed to fetch export")
		return
	}
	if exp.Status != models.ExportStatusCompleted || exp.ObjectKey == "" {
		response.BadRequest(c, "export is not ready")
		return
	}

	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.ExportsBucket(), exp.ObjectKey, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign export download failed", zap.Error(err), zap.String("export_id", id.String()))
		response.Internal(c, "failed to generate download url")
		return
	}
	response.OK(c, gin.H{"export_id": exp.ID, "download_url": url})
}
