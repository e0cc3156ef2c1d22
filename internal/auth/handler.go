package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formforge/backend/internal/models"
	"github.com/formforge/backend/pkg/response"
	"github.com/formforge/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	_, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.Name)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Me handles GET /auth/me: the authenticated user's own profile. The key
// matches middleware.ContextUserID; the constant lives there and this package
// cannot import it back.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}
