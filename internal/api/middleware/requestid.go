package middleware

import (
	"ecobeehub/internal/idgen"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDKey = "X-Request-ID"

	maxRequestIDLength = 64
)

// RequestID tags each request with an ID. A caller supplied ID is kept
// when it is short and made of [A-Za-z0-9._-]; anything else is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if !validRequestID(requestID) {
			requestID = idgen.New()
		}
		c.Header(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}
