package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/speechcoach/backend/config"
)

// CORS allows browser clients from the configured origins to upload recordings.
// allowedOrigins is "*" or a comma-separated list.
func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := make(map[string]struct{})
	for _, o := range config.SplitTrim(allowedOrigins, ",") {
		origins[o] = struct{}{}
	}
	_, wildcard := origins["*"]
	wildcard = wildcard || len(origins) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := ""
		switch {
		case wildcard:
			allow = "*"
		case origin != "":
			if _, ok := origins[origin]; ok {
				allow = origin
				c.Header("Vary", "Origin")
			}
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
