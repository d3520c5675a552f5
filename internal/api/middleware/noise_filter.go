package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const SkipLoggingKey = "skip_logging"

// NoiseFilter marks requests that should not be logged: successful health
// probes and unauthenticated scanner requests
func NoiseFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.GetBool(AuthenticatedKey) {
			return
		}

		path := strings.ToLower(c.Request.URL.Path)
		status := c.Writer.Status()

		switch {
		case path == "/health" && status == http.StatusOK:
			c.Set(SkipLoggingKey, true)
		case status == http.StatusMethodNotAllowed:
			c.Set(SkipLoggingKey, true)
		case status >= 400 && isScannerPath(path):
			c.Set(SkipLoggingKey, true)
		}
	}
}

var (
	scannerPrefixes = []string{
		"/admin", "/phpmyadmin", "/wp-admin", "/wp-login", "/.env", "/.git",
		"/backup", "/.aws", "/console", "/actuator", "/cgi-bin", "/.well-known",
		"/robots.txt", "/favicon.ico", "/sitemap.xml",
	}
	scannerExtensions = []string{
		".php", ".asp", ".aspx", ".jsp", ".bak", ".old", ".sql", ".zip", ".tar", ".gz",
	}
)

// isScannerPath checks if a lowercase path is commonly probed by scanners
func isScannerPath(path string) bool {
	for _, prefix := range scannerPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, ext := range scannerExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
