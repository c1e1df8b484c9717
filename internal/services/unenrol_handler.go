package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/restrictions"
)

// UnenrolHandler resets a user's completion when they leave a course that asks for it.
type UnenrolHandler struct {
	engine   *ResetEngine
	resolver *ConfigResolver
	logger   *slog.Logger
}

func NewUnenrolHandler(engine *ResetEngine, resolver *ConfigResolver, logger *slog.Logger) *UnenrolHandler {
	return &UnenrolHandler{engine: engine, resolver: resolver, logger: logger}
}

// Handle is an events.UnenrolHandler. Only persistence failures are returned so the message is
// redelivered; courses that do not want the reset and restricted users are acknowledged.
func (h *UnenrolHandler) Handle(ctx context.Context, event events.UnenrolEvent) error {
	ctx = access.WithActor(ctx, access.SystemActorID)
	ctx = restrictions.WithDepartingEnrolment(ctx, event.EnrolID)

	cfg, err := h.resolver.Resolve(ctx, event.CourseID)
	if err != nil {
		return err
	}
	if !cfg.Enable || !cfg.UnenrolEnable {
		h.logger.DebugContext(ctx, "Unenrolment ignored, course does not reset on unenrol",
			"user_id", event.UserID, "course_id", event.CourseID)
		return nil
	}

	course, err := h.engine.course(ctx, event.CourseID)
	if errors.Is(err, ErrCourseNotFound) {
		h.logger.WarnContext(ctx, "Unenrolment for unknown course", "course_id", event.CourseID)
		return nil
	}
	if err != nil {
		return err
	}

	result, err := h.engine.Reset(ctx, event.UserID, course, cfg, models.TriggerUnenrol)
	switch {
	case errors.Is(err, ErrRestricted):
		return nil
	case err != nil:
		return err
	}

	h.logger.InfoContext(ctx, "Completion reset after unenrolment",
		"user_id", event.UserID, "course_id", event.CourseID, "warnings", len(result.Warnings))
	return nil
}
