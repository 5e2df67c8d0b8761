package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/apperr"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string        `json:"error"`
	Code   apperr.Code   `json:"code"`
	Fields apperr.Fields `json:"fields,omitempty"`
}

// ErrorHandler renders the last error attached with c.Error once the chain
// has run. Internal errors are logged and replaced by a generic message.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperr.From(c.Errors.Last().Err)
		if appErr.Code == apperr.CodeInternal {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", appErr.Error(),
			)
		}
		c.JSON(appErr.HTTPStatus(), ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Fields: appErr.Fields,
		})
	}
}

// Recovery converts panics into a 500 error response.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  apperr.CodeInternal,
		})
	})
}

// RequestLogger logs one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
