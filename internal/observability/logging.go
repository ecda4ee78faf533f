// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	CorrelationID LogContextKey = "correlation_id"
)

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableCorrelationID bool
	EnableRepoLogging   bool
	EnableAuthLogging   bool
}

var (
	// Config holds the current logging configuration.
	Config = LoggingConfig{
		EnableCorrelationID: true,
		EnableRepoLogging:   true,
		EnableAuthLogging:   true,
	}
)

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id := ctx.Value(CorrelationID); id != nil {
		return id.(string)
	}
	return ""
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
	logger    *Logger
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{
		tableName: tableName,
		logger:    GlobalLogger,
	}
}

func (l *RepoLogger) log(ctx context.Context, operation string, fields map[string]interface{}) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "repository "+operation, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "delete", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableRepoLogging {
		return
	}
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

// AuthLogger provides structured logging for authentication and lockout
// events. Failed attempts are logged without the submitted credentials.
type AuthLogger struct {
	logger *Logger
}

// NewAuthLogger creates a new AuthLogger.
func NewAuthLogger() *AuthLogger {
	return &AuthLogger{logger: GlobalLogger}
}

// LogLoginSuccess logs a successful login.
func (l *AuthLogger) LogLoginSuccess(ctx context.Context, userID uint, ip string) {
	if !Config.EnableAuthLogging {
		return
	}
	l.logger.InfoContext(ctx, "login success",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("ip", ip),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogLoginFailure logs a failed login attempt.
func (l *AuthLogger) LogLoginFailure(ctx context.Context, userID uint, ip string, attempts int) {
	if !Config.EnableAuthLogging {
		return
	}
	l.logger.WarnContext(ctx, "login failure",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("ip", ip),
		slog.Int("failed_attempts", attempts),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogLockout logs an account lockout transition.
func (l *AuthLogger) LogLockout(ctx context.Context, userID uint, ip string) {
	if !Config.EnableAuthLogging {
		return
	}
	l.logger.WarnContext(ctx, "account locked",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("ip", ip),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogAdminUnlock logs an administrative unlock.
func (l *AuthLogger) LogAdminUnlock(ctx context.Context, adminID, userID uint) {
	if !Config.EnableAuthLogging {
		return
	}
	l.logger.InfoContext(ctx, "account unlocked by admin",
		slog.Uint64("admin_id", uint64(adminID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}
