package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/constants"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/policy"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// RequireAuth checks for a valid bearer token and stores the caller's
// identity in the request context
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			apierrors.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token, secret)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				apierrors.Unauthorized(c, "Token expired")
			} else {
				apierrors.Unauthorized(c, "Invalid token")
			}
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyRoles, claims.Roles)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// GetActor retrieves the current caller's identity from context
func GetActor(c *gin.Context) (policy.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return policy.Actor{}, false
	}

	actor := policy.Actor{ID: id}
	if roles, exists := c.Get(constants.ContextKeyRoles); exists {
		if rs, ok := roles.([]string); ok {
			actor.Roles = rs
		}
	}
	return actor, true
}
