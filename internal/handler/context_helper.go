package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yardimli/learn-with-ai-sub000/internal/middleware"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actor returns the caller's id and role, empty when unauthenticated.
func actor(c *gin.Context) (string, models.UserRole) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", ""
	}
	return claims.UserID, claims.Role
}
