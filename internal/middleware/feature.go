package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
	"github.com/yardimli/learn-with-ai-sub000/pkg/response"
)

// FeatureGate rejects requests with FEATURE_DISABLED when a feature flag is
// off. The route stays registered so clients get a typed error, not a bare 404.
func FeatureGate(feature string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, feature+" is disabled"))
			c.Abort()
			return
		}
		c.Next()
	}
}
