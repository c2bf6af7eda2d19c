package middleware

import (
	"net/http"
	"strings"

	"havenstay/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextElevated  = "elevated"
)

// JWTAuthMiddleware verifies the bearer token issued by the external
// identity provider and injects the caller's identity into the request
// context. It is the only place identity is read; downstream code never
// parses tokens.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, email, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserEmail, email)
		c.Set(ContextElevated, utils.IsElevated(tokenString))
		c.Next()
	}
}

// IdentityFrom reads the authenticated identity out of the gin context.
func IdentityFrom(c *gin.Context) (userID, email string, elevated bool) {
	userID = c.GetString(ContextUserID)
	email = c.GetString(ContextUserEmail)
	elevated = c.GetBool(ContextElevated)
	return
}
