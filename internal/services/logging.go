package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

type contextKey string

// Request scoped values the HTTP layer places in the context.
const (
	RequestIDKey contextKey = "request_id"
	ClientIPKey  contextKey = "client_ip"
	UserAgentKey contextKey = "user_agent"
)

// ===== OPERATION LOGGING =====

// classify picks the level and status label for an operation outcome.
func classify(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case IsValidation(err), IsBusinessRule(err):
		return slog.LevelWarn, "rejected"
	case errors.Is(err, ErrRestricted):
		return slog.LevelInfo, "skipped"
	case IsUnauthorized(err):
		return slog.LevelWarn, "unauthorized"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	case IsConflict(err):
		return slog.LevelWarn, "conflict"
	default:
		return slog.LevelError, "error"
	}
}

// LogOperation writes one line per operation against a course.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, actorID, courseID uint, duration time.Duration, err error, extra ...slog.Attr) {
	level, status := classify(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("actor_id", uint64(actorID)),
		slog.Uint64("course_id", uint64(courseID)),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	attrs = append(attrs, extra...)
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	var verrs ValidationErrors
	var perr *PermissionError
	var rule *BusinessRuleError
	switch {
	case err == nil:
	case errors.As(err, &verrs):
		attrs = append(attrs, slog.Int("validation_errors_count", len(verrs)))
		for i, v := range verrs {
			if i == 5 {
				break
			}
			attrs = append(attrs, slog.Group(fmt.Sprintf("field_%d", i+1),
				slog.String("name", v.Field),
				slog.String("message", v.Message)))
		}
	case errors.As(err, &perr):
		attrs = append(attrs, slog.String("capability", perr.Capability), slog.String("action", perr.Action))
	case errors.As(err, &rule):
		attrs = append(attrs, slog.String("rule", rule.Rule))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s %s", operation, status), attrs...)
}

// ===== AUDIT LOGGING =====

// ResetAuditEvent describes one completed reset for the audit stream.
type ResetAuditEvent struct {
	ActorID  uint
	CourseID uint
	UserID   uint
	Trigger  string
	Warnings int
}

func (l *ServiceLogger) LogResetAudit(ctx context.Context, event ResetAuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", "reset"),
		slog.Uint64("actor_id", uint64(event.ActorID)),
		slog.Uint64("course_id", uint64(event.CourseID)),
		slog.Uint64("user_id", uint64(event.UserID)),
		slog.String("trigger", event.Trigger),
		slog.Int("warnings", event.Warnings),
		slog.Time("timestamp", time.Now()),
	}
	if ip, ok := ctx.Value(ClientIPKey).(string); ok && ip != "" {
		attrs = append(attrs, slog.String("ip_address", ip))
	}
	if ua, ok := ctx.Value(UserAgentKey).(string); ok && ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "Audit: course completion reset", attrs...)
}

func (l *ServiceLogger) LogRecovery(ctx context.Context, operation string, userID uint, recovered interface{}, stack []byte) {
	l.logger.LogAttrs(ctx, slog.LevelError, "Panic recovered",
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(userID)),
		slog.Any("panic_value", recovered),
		slog.String("stack_trace", string(stack)),
	)
}

// ContextualLogger times one operation and logs its outcome.
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	actorID   uint
	startTime time.Time
	ctx       context.Context
	extra     []slog.Attr
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, actorID uint) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		actorID:   actorID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

// With adds attributes to the result line.
func (cl *ContextualLogger) With(attrs ...slog.Attr) *ContextualLogger {
	cl.extra = append(cl.extra, attrs...)
	return cl
}

func (cl *ContextualLogger) LogResult(courseID uint, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.actorID, courseID, time.Since(cl.startTime), err, cl.extra...)
}
