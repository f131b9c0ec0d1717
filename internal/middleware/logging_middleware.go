package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/roomieradar/roomieradar/internal/telemetry"
)

// CorrelationHeader carries the request correlation id in both directions.
const CorrelationHeader = "X-Correlation-ID"

var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"Set-Cookie":    true,
	"X-Api-Key":     true,
}

// LoggingConfig holds the configuration for logging middleware
type LoggingConfig struct {
	SkipPaths     []string
	LogHeaders    bool
	SlowThreshold time.Duration
}

func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SkipPaths:     []string{"/health"},
		LogHeaders:    false,
		SlowThreshold: 2 * time.Second,
	}
}

// LoggingMiddleware tags each request with a correlation id, exposes it on
// the response and logs the request once it completes.
func LoggingMiddleware(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationHeader)
		if correlationID == "" {
			correlationID = telemetry.NewCorrelationID()
		}
		c.Header(CorrelationHeader, correlationID)
		c.Request = c.Request.WithContext(telemetry.WithCorrelationID(c.Request.Context(), correlationID))

		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"query":       c.Request.URL.RawQuery,
			"remote_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
			"status":      c.Writer.Status(),
			"size":        c.Writer.Size(),
			"duration_ms": float64(duration.Nanoseconds()) / 1e6,
		}
		if config.LogHeaders {
			fields["headers"] = redactHeaders(c.Request.Header)
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.Errors()
		}

		// Reads the context after c.Next so RequireAuth's user id is included.
		entry := telemetry.GetContextualLogger(c.Request.Context()).WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request completed with server error")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request completed with client error")
		case duration > config.SlowThreshold:
			entry.Warn("HTTP request completed (slow)")
		default:
			entry.Info("HTTP request completed")
		}
	}
}

func redactHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for name, values := range header {
		switch {
		case sensitiveHeaders[name]:
			out[name] = "[REDACTED]"
		case len(values) > 0:
			out[name] = values[0]
		}
	}
	return out
}
