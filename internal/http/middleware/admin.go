package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ActorIDKey = "actor_id"

// AdminKey guards the administrative surface. Authentication proper is an
// external collaborator; this layer only checks the shared admin key and
// records the already-authorized actor identity for audit attribution.
func AdminKey(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if required != "" {
			key := c.GetHeader("X-Admin-Key")
			if key != required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{
						"code":    "UNAUTHORIZED",
						"message": "Invalid admin key",
					},
				})
				return
			}
		}
		c.Set(ActorIDKey, c.GetHeader("X-Actor-Id"))
		c.Next()
	}
}
