package handlers

import (
	"net/http"
	"strings"

	"lexaid-backend/models"
	"lexaid-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextUserKey is where RequireAuth stores the authenticated user
const contextUserKey = "auth_user"

// RequireAuth validates the Bearer token against auth_tokens and stores
// the resolved user in the request context
func RequireAuth(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			abortUnauthorized(c, "A Bearer token is required")
			return
		}

		token, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, "Invalid token format")
			return
		}

		user, err := userRepo.GetUserByToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// authenticatedUser returns the user RequireAuth resolved, if any
func authenticatedUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
