package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds the cross-origin policy for the import API.
type CORSConfig struct {
	AllowedOrigins  []string
	AllowAllOrigins bool
}

// CORS returns a middleware applying the configured cross-origin policy.
// Requests from origins outside the policy pass through without CORS
// headers; preflight requests are answered with 204.
// Parameters:
//   - config: origin allow-list, or the allow-all switch.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func CORS(config CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		header := c.Writer.Header()

		if config.AllowAllOrigins {
			// Credentials cannot be combined with a wildcard origin.
			header.Set("Access-Control-Allow-Origin", "*")
			header.Set("Access-Control-Allow-Credentials", "false")
		} else {
			if len(config.AllowedOrigins) > 0 && !IsOriginAllowed(origin, config) {
				c.Next()
				return
			}
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		header.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		header.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// IsOriginAllowed reports whether an origin is covered by the policy.
// Parameters:
//   - origin: value of the request's Origin header.
//   - config: origin allow-list, or the allow-all switch.
// Returns:
//   - bool: true when the origin may make cross-origin requests.
func IsOriginAllowed(origin string, config CORSConfig) bool {
	if config.AllowAllOrigins {
		return true
	}
	for _, allowed := range config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
