package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error as
// the JSON error envelope. Errors that are not AppErrors become
// INTERNAL_ERROR so storage details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}

		appErr := asAppError(c, last.Err)
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{"code": appErr.Code, "message": appErr.Message},
		})
	}
}

func asAppError(c *gin.Context, err error) *apperrors.AppError {
	log := logger.Named("http").With(
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", RequestID(c),
	)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Errorw("unhandled error", "error", err)
		return apperrors.ErrInternalServer
	}
	if appErr.Internal != nil {
		log.Errorw("request failed", "code", appErr.Code, "cause", appErr.Internal)
	}
	return appErr
}
