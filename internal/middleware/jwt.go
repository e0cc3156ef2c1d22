package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/formforge/backend/internal/auth"
	"github.com/formforge/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// OptionalJWT sets the user's identity in context when a valid bearer token is
// present and passes the request through otherwise. Used on public endpoints
// that record the respondent when one is signed in.
func OptionalJWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			c.Next()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
