package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
	"github.com/yardimli/learn-with-ai-sub000/pkg/response"
)

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// CalendarManagers may save, publish and delete plans and edit templates.
func CalendarManagers() gin.HandlerFunc {
	return RBAC(models.RoleAdmin, models.RoleSuperAdmin)
}

// CalendarViewers may preview, browse and export calendars.
func CalendarViewers() gin.HandlerFunc {
	return RBAC(models.RoleAdmin, models.RoleSuperAdmin, models.RoleTeacher)
}
