package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

// ErrorHandler renders the last error a handler attached with c.Error as
// {"error": {...}} and recovers panics as internal errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				telemetry.GetContextualLogger(c.Request.Context()).WithFields(map[string]interface{}{
					"operation":   "error_handler_panic",
					"panic_value": fmt.Sprintf("%v", r),
					"stack_trace": string(debug.Stack()),
				}).Error("Panic recovered in HTTP handler")

				writeError(c, errors.NewInternalError(fmt.Sprintf("Panic in handler: %v", r), nil))
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	correlationID := telemetry.GetCorrelationID(ctx)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError("An unexpected error occurred", err)
	}
	if appErr.CorrelationID == "" {
		appErr = appErr.WithCorrelationID(correlationID)
	}

	logError(c, appErr)

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": publicView(appErr)})
}

// publicView hides causes and metadata of server-side failures.
func publicView(appErr *errors.AppError) gin.H {
	body := gin.H{
		"type":           appErr.Type,
		"code":           appErr.Code,
		"message":        appErr.Message,
		"correlation_id": appErr.CorrelationID,
	}
	if appErr.HTTPStatus < http.StatusInternalServerError {
		if appErr.Details != "" {
			body["details"] = appErr.Details
		}
		if len(appErr.Metadata) > 0 {
			body["metadata"] = appErr.Metadata
		}
	}
	return body
}

func logError(c *gin.Context, appErr *errors.AppError) {
	logger := telemetry.GetContextualLogger(c.Request.Context()).WithFields(map[string]interface{}{
		"operation":  "error_handler_log",
		"error_type": string(appErr.Type),
		"error_code": appErr.Code,
		"path":       c.Request.URL.Path,
	})
	for k, v := range appErr.Metadata {
		logger = logger.WithField(k, v)
	}
	if appErr.Cause != nil {
		logger = logger.WithField("cause", appErr.Cause.Error())
	}
	if appErr.Details != "" {
		logger = logger.WithField("details", appErr.Details)
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeAuthentication, errors.ErrorTypeRateLimit:
		logger.Warn(appErr.Message)
	case errors.ErrorTypeNotFound, errors.ErrorTypeConflict:
		logger.Info(appErr.Message)
	default:
		logger.Error(appErr.Message)
	}
}
