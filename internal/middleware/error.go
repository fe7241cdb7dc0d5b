package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
	"github.com/opensettle/marketgate/internal/pkg/logger"
)

// ErrorHandler turns errors recorded on the gin context into the API's JSON
// error body. Settlement rejections log at warn with their error code; only
// genuine server faults log at error level.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		var appErr *apperrors.AppError
		if !errors.As(last.Err, &appErr) {
			appErr = apperrors.Wrap(last.Err)
		}

		fields := []any{
			"code", appErr.Type,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
		}
		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", fields...)
		} else {
			logger.Warn(appErr.Message, fields...)
		}

		c.JSON(appErr.HTTPStatus, appErr)
	}
}
