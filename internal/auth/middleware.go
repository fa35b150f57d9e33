package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	"github.com/opennoc/fiberplant/internal/auth/domain"
)

const claimsKey = "auth.claims"

// Authenticate rejects requests without a valid bearer token, stores the
// token's claims on the gin context for downstream handlers, and tags the
// request context with the caller's username for audit attribution.
func Authenticate(svc domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
			return
		}
		claims, err := svc.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(auditdomain.WithActor(c.Request.Context(), claims.Username))
		c.Next()
	}
}

// ClaimsFromContext returns the verified claims set by Authenticate.
func ClaimsFromContext(c *gin.Context) (*domain.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*domain.Claims)
	return claims, ok
}
