package middleware

import (
	"strings"

	"knowledge-base-api/auth"
	"knowledge-base-api/helper"
	"knowledge-base-api/models"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

var HTTPHelper = helper.New()

// AuthMiddleware requires a valid bearer token and stores its claims on
// the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			HTTPHelper.SendUnauthorizedError(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			HTTPHelper.SendUnauthorizedError(c, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := jwtManager.Parse(tokenString)
		if err != nil {
			HTTPHelper.SendUnauthorizedError(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			HTTPHelper.SendUnauthorizedError(c, "User role not found")
			c.Abort()
			return
		}

		roleStr, _ := userRole.(string)
		for _, role := range roles {
			if roleStr == string(role) {
				c.Next()
				return
			}
		}

		HTTPHelper.SendForbiddenError(c, "Insufficient permissions")
		c.Abort()
	}
}

// CurrentUser returns the authenticated caller, if any.
func CurrentUser(c *gin.Context) (uint, models.UserRole, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return 0, "", false
	}
	userID, ok := id.(uint)
	if !ok {
		return 0, "", false
	}
	role, _ := c.Get(ContextRole)
	roleStr, _ := role.(string)
	return userID, models.UserRole(roleStr), true
}
