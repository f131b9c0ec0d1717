package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// LogConfig holds the logging configuration
type LogConfig struct {
	Level      LogLevel `json:"level"`
	Format     string   `json:"format"` // "json" or "text"
	Output     string   `json:"output"` // "stdout", "stderr", or file path
	Rotation   bool     `json:"rotation"`
	MaxSize    int      `json:"max_size"` // MB
	MaxBackups int      `json:"max_backups"`
	MaxAge     int      `json:"max_age"` // days
	Compress   bool     `json:"compress"`
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:      InfoLevel,
		Format:     "json",
		Output:     "stdout",
		Rotation:   false,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// ParseLogLevel maps a free-form level name onto a LogLevel, defaulting to info.
func ParseLogLevel(level string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(level))) {
	case DebugLevel:
		return DebugLevel
	case WarnLevel, "warning":
		return WarnLevel
	case ErrorLevel:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger wraps logrus with additional functionality
type Logger struct {
	*logrus.Logger
	config *LogConfig
}

// NewLogger creates a new logger instance
func NewLogger(config *LogConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLogConfig()
	}

	logger := logrus.New()

	switch config.Level {
	case DebugLevel:
		logger.SetLevel(logrus.DebugLevel)
	case WarnLevel:
		logger.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	var output io.Writer
	switch config.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		if config.Rotation {
			output = &lumberjack.Logger{
				Filename:   config.Output,
				MaxSize:    config.MaxSize,
				MaxBackups: config.MaxBackups,
				MaxAge:     config.MaxAge,
				Compress:   config.Compress,
			}
		} else {
			file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
			output = file
		}
	}
	logger.SetOutput(output)

	return &Logger{
		Logger: logger,
		config: config,
	}, nil
}

// ContextualLogger carries request-scoped fields (correlation and trace ids)
// into every entry it writes.
type ContextualLogger struct {
	*Logger
	fields logrus.Fields
}

// WithContext creates a new logger with context information
func (l *Logger) WithContext(ctx context.Context) *ContextualLogger {
	fields := logrus.Fields{}

	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	if userID := GetUserID(ctx); userID != "" {
		fields["user_id"] = userID
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		fields["trace_id"] = span.SpanContext().TraceID().String()
		fields["span_id"] = span.SpanContext().SpanID().String()
	}

	return &ContextualLogger{
		Logger: l,
		fields: fields,
	}
}

// WithFields adds additional fields to the logger
func (cl *ContextualLogger) WithFields(fields logrus.Fields) *ContextualLogger {
	combined := make(logrus.Fields, len(cl.fields)+len(fields))
	for k, v := range cl.fields {
		combined[k] = v
	}
	for k, v := range fields {
		combined[k] = v
	}

	return &ContextualLogger{
		Logger: cl.Logger,
		fields: combined,
	}
}

// WithField adds a single field to the logger
func (cl *ContextualLogger) WithField(key string, value interface{}) *ContextualLogger {
	return cl.WithFields(logrus.Fields{key: value})
}

// WithError attaches err under the standard logrus error key.
func (cl *ContextualLogger) WithError(err error) *ContextualLogger {
	return cl.WithField(logrus.ErrorKey, err)
}

func (cl *ContextualLogger) entry() *logrus.Entry {
	return cl.Logger.Logger.WithFields(cl.fields)
}

func (cl *ContextualLogger) Debug(args ...interface{}) { cl.entry().Debug(args...) }
func (cl *ContextualLogger) Info(args ...interface{}) { cl.entry().Info(args...) }
func (cl *ContextualLogger) Warn(args ...interface{}) { cl.entry().Warn(args...) }
func (cl *ContextualLogger) Error(args ...interface{}) { cl.entry().Error(args...) }

type correlationIDKey struct{}

type userIDKey struct{}

// WithCorrelationID adds a correlation ID to the context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context
func GetCorrelationID(ctx context.Context) string {
	if correlationID, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return correlationID
	}
	return ""
}

// NewCorrelationID generates a new correlation ID
func NewCorrelationID() string {
	return uuid.New().String()
}

// WithUserID records the authenticated user on the context so log lines carry it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID returns the authenticated user recorded by WithUserID.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey{}).(string); ok {
		return userID
	}
	return ""
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(config *LogConfig) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	SetGlobalLogger(logger)
	return nil
}

// SetGlobalLogger replaces the global logger. nil restores the default on
// next use.
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger, _ = NewLogger(DefaultLogConfig())
	}
	return globalLogger
}

// GetContextualLogger returns the global logger carrying ctx's request fields.
func GetContextualLogger(ctx context.Context) *ContextualLogger {
	return GetGlobalLogger().WithContext(ctx)
}
