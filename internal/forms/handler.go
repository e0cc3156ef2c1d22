package forms

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/formforge/backend/internal/middleware"
	"github.com/formforge/backend/internal/models"
	"github.com/formforge/backend/pkg/response"
)

const viewCacheTTL = 5 * time.Minute

// FormRequest is the body for POST /forms and PUT /forms/:id. The document is
// replaced in full on update; clients send every field, changed or not.
type FormRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Questions   []models.Question `json:"questions"`
}

// PublicForm is the respondent-facing shape of a form: no creator identity.
type PublicForm struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []models.Question `json:"questions"`
}

// Handler handles form HTTP endpoints.
type Handler struct {
	repo   *Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewHandler creates a form handler. cache may be nil to disable view caching.
func NewHandler(repo *Repository, cache *redis.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, cache: cache, logger: logger}
}

// List handles GET /forms: all forms owned by the caller.
func (h *Handler) List(c *gin.Context) {
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByCreator(c.Request.Context(), creatorID)
	if err != nil {
		h.logger.Error("list forms failed", zap.Error(err))
		response.Internal(c, "failed to list forms")
		return
	}
	response.OK(c, list)
}

// Create handles POST /forms. The caller becomes the creator.
func (h *Handler) Create(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	f := &models.Form{
		Title:       req.Title,
		Description: req.Description,
		Questions:   normalizeQuestions(req.Questions),
		CreatorID:   creatorID,
	}
	if err := f.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Create(c.Request.Context(), f); err != nil {
		h.logger.Error("create form failed", zap.Error(err))
		response.Internal(c, "failed to create form")
		return
	}
	response.Created(c, f)
}

// GetByID handles GET /forms/:id, owner-scoped.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	f, err := h.repo.GetByID(c.Request.Context(), id, creatorID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "form not found")
		return
	}
	if err != nil {
		h.logger.Error("get form failed", zap.Error(err))
		response.Internal(c, "failed to fetch form")
		return
	}
	response.OK(c, f)
}

// Update handles PUT /forms/:id: full-document replace, owner-scoped.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	f := &models.Form{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Questions:   normalizeQuestions(req.Questions),
	}
	if err := f.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), f, creatorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("update form failed", zap.Error(err))
		response.Internal(c, "failed to update form")
		return
	}
	h.invalidateView(c, id)
	response.OK(c, f)
}

// Delete handles DELETE /forms/:id: owner-scoped delete with response cascade.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.repo.Delete(c.Request.Context(), id, creatorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("delete form failed", zap.Error(err))
		response.Internal(c, "failed to delete form")
		return
	}
	h.invalidateView(c, id)
	response.NoContent(c)
}

// View handles GET /forms/:id/view: the public respondent-facing fetch,
// cached in Redis and invalidated on update/delete.
func (h *Handler) View(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	if h.cache != nil {
		if raw, err := h.cache.Get(c.Request.Context(), viewCacheKey(id)).Bytes(); err == nil {
			var cached PublicForm
			if json.Unmarshal(raw, &cached) == nil {
				response.OK(c, cached)
				return
			}
		}
	}

	f, err := h.repo.GetPublic(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "form not found")
		return
	}
	if err != nil {
		h.logger.Error("view form failed", zap.Error(err))
		response.Internal(c, "failed to fetch form")
		return
	}

	view := PublicForm{ID: f.ID, Title: f.Title, Description: f.Description, Questions: f.Questions}
	if h.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			if err := h.cache.Set(c.Request.Context(), viewCacheKey(id), raw, viewCacheTTL).Err(); err != nil {
				h.logger.Warn("cache form view failed", zap.Error(err))
			}
		}
	}
	response.OK(c, view)
}

func (h *Handler) invalidateView(c *gin.Context, id uuid.UUID) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Del(c.Request.Context(), viewCacheKey(id)).Err(); err != nil {
		h.logger.Warn("invalidate form view failed", zap.Error(err), zap.String("form_id", id.String()))
	}
}

func viewCacheKey(id uuid.UUID) string {
	return "form:view:" + id.String()
}

// normalizeQuestions assigns ids to questions and options that arrive without
// one, and gives choice-type questions an option list so the stored document
// always satisfies the model invariant.
func normalizeQuestions(qs []models.Question) []models.Question {
	if qs == nil {
		return []models.Question{}
	}
	for i := range qs {
		if qs[i].ID == uuid.Nil {
			qs[i].ID = uuid.New()
		}
		if qs[i].Type.HasOptions() && qs[i].Options == nil {
			qs[i].Options = []models.Option{}
		}
		for j := range qs[i].Options {
			if qs[i].Options[j].ID == uuid.Nil {
				qs[i].Options[j].ID = uuid.New()
			}
		}
	}
	return qs
}
