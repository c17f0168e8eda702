package logger

import (
	"context"
	"fmt"
	"strings"

	"leadflow-api/internal/observability/requestid"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	loggerContextKey      contextKey = "logger"
	workspaceIDContextKey contextKey = "workspace_id"
	userIDContextKey      contextKey = "user_id"
)

// Logger wraps zap.Logger to enforce structured logging standards:
// JSON output, context-propagated request/workspace/user ids, a
// module/action convention on every entry, and secret redaction.
type Logger struct {
	zap         *zap.Logger
	serviceName string
}

// Field represents a structured log field
type Field = zapcore.Field

// New creates a Logger. level is one of debug, info, warn, error.
func New(serviceName string, level string) (*Logger, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("serviceName is required")
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	z = z.With(zap.String("service", serviceName))

	return &Logger{zap: z, serviceName: serviceName}, nil
}

// Module returns a field for the module/component
func Module(name string) Field {
	return zap.String("module", name)
}

// Action returns a field for the action/operation
func Action(name string) Field {
	return zap.String("action", name)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...Field) {
	contextFields := []Field{}

	if requestID := requestid.Get(ctx); requestID != "" {
		contextFields = append(contextFields, zap.String("request_id", requestID))
	}
	if workspaceID := GetWorkspaceIDFromContext(ctx); workspaceID != "" {
		contextFields = append(contextFields, zap.String("workspace_id", workspaceID))
	}
	if userID := GetUserIDFromContext(ctx); userID != "" {
		contextFields = append(contextFields, zap.String("user_id", userID))
	}

	sanitizedFields := sanitizeFields(fields)

	// Missing module/action degrades to defaults instead of crashing.
	hasModule, hasAction := false, false
	for _, f := range sanitizedFields {
		switch f.Key {
		case "module":
			hasModule = true
		case "action":
			hasAction = true
		}
	}
	if !hasModule {
		sanitizedFields = append(sanitizedFields, zap.String("module", "unknown"))
	}
	if !hasAction {
		sanitizedFields = append(sanitizedFields, zap.String("action", "unknown"))
	}

	allFields := append(contextFields, sanitizedFields...)

	switch level {
	case zapcore.DebugLevel:
		l.zap.Debug(msg, allFields...)
	case zapcore.InfoLevel:
		l.zap.Info(msg, allFields...)
	case zapcore.WarnLevel:
		l.zap.Warn(msg, allFields...)
	case zapcore.ErrorLevel:
		l.zap.Error(msg, allFields...)
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// sanitizeFields redacts credential and PII keys before they reach
// the log stream.
func sanitizeFields(fields []Field) []Field {
	forbiddenKeys := map[string]bool{
		"authorization": true,
		"token":         true,
		"password":      true,
		"secret":        true,
		"api_key":       true,
		"database_url":  true,
		"jwt":           true,
		"bearer":        true,
		"credential":    true,
		"email":         true,
		"phone":         true,
		"full_name":     true,
	}

	sanitized := make([]Field, 0, len(fields))
	for _, field := range fields {
		if forbiddenKeys[strings.ToLower(field.Key)] {
			sanitized = append(sanitized, zap.String(field.Key, "[REDACTED]"))
		} else {
			sanitized = append(sanitized, field)
		}
	}
	return sanitized
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Context plumbing

func GetWorkspaceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(workspaceIDContextKey).(string); ok {
		return id
	}
	return ""
}

func GetUserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDContextKey).(string); ok {
		return id
	}
	return ""
}

func SetRequestIDInContext(ctx context.Context, requestID string) context.Context {
	return requestid.Set(ctx, requestID)
}

func SetWorkspaceIDInContext(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDContextKey, workspaceID)
}

func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetLogger retrieves the logger from context or returns a fallback.
func GetLogger(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return l
	}
	fallback, _ := New("leadflow-api", "info")
	return fallback
}

// SetLoggerInContext stores the logger in context
func SetLoggerInContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, l)
}
