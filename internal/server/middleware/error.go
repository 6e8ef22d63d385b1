package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prism-fanout/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler reported through c.Error.
// Anything that is not an *api.Error becomes a 500 server_error.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			if apiErr.Log != nil {
				logger.Error("Internal error",
					zap.String("path", c.FullPath()),
					zap.String("reason", apiErr.Reason),
					zap.Error(apiErr.Log))
			}
			c.AbortWithStatusJSON(apiErr.Status, apiErr.Body())
			return
		}

		logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.ReasonServerError})
	}
}

// Recovery turns a handler panic into the same 500 body.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Handler panicked", zap.String("path", c.Request.URL.Path), zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.ReasonServerError})
	})
}
