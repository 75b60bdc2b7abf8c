package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when the token carries one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[Role(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "access denied"})
			return
		}
		c.Next()
	}
}
