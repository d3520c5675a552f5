package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentType rejects write requests whose body is not JSON. Bodyless
// requests (e.g., POST /v1/entries/:id/reload) pass through.
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if c.Request.ContentLength != 0 && c.ContentType() != gin.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "Content-Type must be application/json",
				"code":  "INVALID_CONTENT_TYPE",
			})
			return
		}
		c.Next()
	}
}
