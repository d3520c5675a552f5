package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	APIKeyHeader     = "X-Ecobeehub-Key"
	AuthenticatedKey = "authenticated"
)

// APIKeyAuth verifies the API key header. A bcrypt hash takes precedence over
// the plain key so the key itself does not have to be stored in the config.
func APIKeyAuth(apiKey, apiKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader(APIKeyHeader)
		if providedKey == "" || !validKey(providedKey, apiKey, apiKeyHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}
		c.Set(AuthenticatedKey, true)
		c.Next()
	}
}

func validKey(provided, apiKey, apiKeyHash string) bool {
	// bcrypt hashes start with $2
	if strings.HasPrefix(apiKeyHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(provided)) == nil
	}
	if apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) == 1
}
