package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/speechcoach/backend/internal/auth"
	"github.com/speechcoach/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// TokenValidator resolves a bearer token to a user.
type TokenValidator interface {
	Validate(token string) (uuid.UUID, *auth.Claims, error)
}

// JWT returns a middleware that validates the bearer token and sets the user in context.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "no authorization header")
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}
		if !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authentication scheme")
			return
		}
		userID, claims, err := validator.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user set by JWT.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}
