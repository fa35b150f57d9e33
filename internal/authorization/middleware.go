package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opennoc/fiberplant/internal/auth"
)

// Require returns a middleware enforcing one object/action pair. It must run
// after auth.Authenticate.
func Require(svc Service, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if err := svc.Authorize(c.Request.Context(), claims.Role, object, action); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}
