package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prism-fanout/pkg/api"
)

// Auth checks for a Bearer token matching one of the static keys. With no
// keys configured every request passes.
func Auth(staticKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(staticKeys))
	for _, k := range staticKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(api.UnauthorizedError("missing Authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			_ = c.Error(api.UnauthorizedError("invalid Authorization header format"))
			c.Abort()
			return
		}

		token := []byte(parts[1])
		for _, k := range keys {
			if subtle.ConstantTimeCompare(token, k) == 1 {
				c.Next()
				return
			}
		}

		_ = c.Error(api.UnauthorizedError("invalid API key"))
		c.Abort()
	}
}
