package responses

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formforge/backend/internal/forms"
	"github.com/formforge/backend/internal/middleware"
	"github.com/formforge/backend/internal/models"
	"github.com/formforge/backend/pkg/response"
)

// SubmitRequest is the body for POST /forms/:id/submit.
type SubmitRequest struct {
	Answers models.AnswerSet `json:"answers" binding:"required"`
}

// Handler handles response HTTP endpoints.
type Handler struct {
	repo     *Repository
	formRepo *forms.Repository
	logger   *zap.Logger
}

// NewHandler creates a responses handler.
func NewHandler(repo *Repository, formRepo *forms.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, formRepo: formRepo, logger: logger}
}

// Submit handles POST /forms/:id/submit. Open to anyone; a verified identity,
// when present, is recorded as the respondent. Required questions and answer
// shapes are checked here as well as in the client, since the client-side
// guard alone is bypassable.
func (h *Handler) Submit(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	f, err := h.formRepo.GetPublic(c.Request.Context(), formID)
	if errors.Is(err, forms.ErrNotFound) {
		response.NotFound(c, "form not found")
		return
	}
	if err != nil {
		h.logger.Error("fetch form for submit failed", zap.Error(err))
		response.Internal(c, "failed to submit response")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := CheckSubmission(f, req.Answers); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp := &models.Response{
		FormID:  formID,
		Answers: req.Answers,
	}
	if id, ok := c.Get(middleware.ContextUserID); ok {
		uid := id.(uuid.UUID)
		resp.RespondentID = &uid
	}
	if err := h.repo.Create(c.Request.Context(), resp); err != nil {
		h.logger.Error("create response failed", zap.Error(err), zap.String("form_id", formID.String()))
		response.Internal(c, "failed to submit response")
		return
	}
	response.Created(c, resp)
}

// ListByForm handles GET /forms/:id/responses, owner-scoped through the form
// lookup: a non-owner gets NotFound, never an empty list.
func (h *Handler) ListByForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if _, err := h.formRepo.GetByID(c.Request.Context(), formID, creatorID); err != nil {
		if errors.Is(err, forms.ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("fetch form for responses failed", zap.Error(err))
		response.Internal(c, "failed to list responses")
		return
	}

	list, err := h.repo.ListByForm(c.Request.Context(), formID)
	if err != nil {
		h.logger.Error("list responses failed", zap.Error(err), zap.String("form_id", formID.String()))
		response.Internal(c, "failed to list responses")
		return
	}
	if list == nil {
		list = []models.ResponseWithRespondent{}
	}
	response.OK(c, list)
}

// Count handles GET /forms/:id/responses/count, owner-scoped the same way as
// ListByForm.
func (h *Handler) Count(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	creatorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if _, err := h.formRepo.GetByID(c.Request.Context(), formID, creatorID); err != nil {
		if errors.Is(err, forms.ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("fetch form for response count failed", zap.Error(err))
		response.Internal(c, "failed to count responses")
		return
	}

	n, err := h.repo.CountByForm(c.Request.Context(), formID)
	if err != nil {
		h.logger.Error("count responses failed", zap.Error(err), zap.String("form_id", formID.String()))
		response.Internal(c, "failed to count responses")
		return
	}
	response.OK(c, gin.H{"form_id": formID, "count": n})
}

// CheckSubmission validates an answer set against the form's question
// definitions: required questions must carry a non-empty answer, and each
// answer's shape must match its question's type. Option ids are not checked
// for membership in the question's option list, and answers keyed by unknown
// question ids pass through untouched.
func CheckSubmission(f *models.Form, answers models.AnswerSet) error {
	for _, q := range f.Questions {
		v, ok := answers[q.ID.String()]
		if !ok || v.IsEmpty() {
			if q.Required {
				return fmt.Errorf("question %q is required", q.Title)
			}
			continue
		}
		if !q.ValidateAnswer(v) {
			return fmt.Errorf("answer for question %q does not match its type", q.Title)
		}
	}
	return nil
}
