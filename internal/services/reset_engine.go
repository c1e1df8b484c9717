package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/cache"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/plugins"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/SAP-F-2025/recompletion-service/internal/restrictions"
	"gorm.io/datatypes"
)

// GradeDeletionSource is recorded in the grade history of every grade the engine removes.
const GradeDeletionSource = "local/recompletion"

// ResetResult describes one finished reset.
type ResetResult struct {
	UserID   uint                          `json:"user_id"`
	CourseID uint                          `json:"course_id"`
	Trigger  models.ResetTrigger           `json:"trigger"`
	Counts   repositories.CompletionCounts `json:"counts"`
	Grades   int                           `json:"grades_deleted"`
	Warnings []string                      `json:"warnings"`
}

// Clean reports whether the reset finished without warnings.
func (r *ResetResult) Clean() bool {
	return len(r.Warnings) == 0
}

// EngineDeps are the collaborators of the reset engine.
type EngineDeps struct {
	Courses      repositories.CourseRepository
	Completions  repositories.CompletionRepository
	Grades       repositories.GradeStore
	AuditLog     repositories.AuditLogRepository
	Resolver     *ConfigResolver
	Registry     *plugins.Registry
	Restriction  restrictions.RestrictionPolicy
	Notification NotificationService
	Events       events.EventPublisher
	Cache        cache.CacheService
	Logger       *slog.Logger
}

// ResetEngine resets one user's completion in one course. Steps run strictly in order:
// core completion, grades, activity plugins, notification, event, cache purge.
type ResetEngine struct {
	deps   EngineDeps
	logger *ServiceLogger

	mu       sync.Mutex
	inFlight map[[2]uint]struct{}
}

func NewResetEngine(deps EngineDeps) *ResetEngine {
	if deps.Restriction == nil {
		deps.Restriction = restrictions.AllowAll{}
	}
	return &ResetEngine{
		deps:     deps,
		logger:   NewServiceLogger(deps.Logger, LogConfig{Service: "recompletion", Component: "reset_engine"}),
		inFlight: make(map[[2]uint]struct{}),
	}
}

// ResetUser loads the course and its configuration and resets one user.
func (e *ResetEngine) ResetUser(ctx context.Context, userID, courseID uint, trigger models.ResetTrigger) (*ResetResult, error) {
	course, err := e.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	cfg, err := e.deps.Resolver.Resolve(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return e.Reset(ctx, userID, course, cfg, trigger)
}

// ResetUsers resets each user in turn. A failing user is recorded and the rest still run; the
// returned error is only set when the course itself could not be loaded.
func (e *ResetEngine) ResetUsers(ctx context.Context, courseID uint, userIDs []uint, trigger models.ResetTrigger) (*BatchResult, error) {
	course, err := e.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	cfg, err := e.deps.Resolver.Resolve(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{}
	seen := make(map[uint]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		if err := ctx.Err(); err != nil {
			batch.add(userID, course.ID, nil, err)
			continue
		}
		result, err := e.Reset(ctx, userID, course, cfg, trigger)
		var warnings []string
		if result != nil {
			warnings = result.Warnings
		}
		batch.add(userID, course.ID, warnings, err)
	}
	return batch, nil
}

// Reset runs the whole sequence for one user with an already resolved configuration.
// ErrRestricted is returned, with nothing changed, when the restriction policy excludes the user.
func (e *ResetEngine) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig, trigger models.ResetTrigger) (result *ResetResult, err error) {
	op := e.logger.WithOperation(ctx, "reset_user", access.ActorFrom(ctx)).
		With(slog.Uint64("user_id", uint64(userID)), slog.String("trigger", string(trigger)))
	defer func() { op.LogResult(course.ID, err) }()

	if !e.acquire(userID, course.ID) {
		return nil, ErrResetInProgress
	}
	defer e.release(userID, course.ID)

	ok, err := e.deps.Restriction.ShouldReset(ctx, userID, course, cfg)
	if err != nil {
		return nil, fmt.Errorf("evaluate restriction: %w", err)
	}
	if !ok {
		return nil, NewBusinessRuleError(models.SettingRestrictEnrol, ErrRestricted.Error(),
			map[string]interface{}{"user_id": userID, "allowed_methods": cfg.RestrictEnrol}, ErrRestricted)
	}

	result = &ResetResult{UserID: userID, CourseID: course.ID, Trigger: trigger, Warnings: []string{}}

	counts, err := e.deps.Completions.ResetCourseCompletion(ctx, userID, course.ID, cfg.ArchiveCompletionData)
	if err != nil {
		return nil, fmt.Errorf("reset course completion: %w", err)
	}
	result.Counts = counts

	if cfg.DeleteGradeData {
		deleted, err := e.deleteGrades(ctx, userID, course.ID)
		if err != nil {
			return nil, fmt.Errorf("delete grades: %w", err)
		}
		result.Grades = deleted
	}

	installed, err := e.deps.Registry.Installed(ctx)
	if err != nil {
		return nil, err
	}
	for _, plugin := range installed {
		warnings, err := e.runPlugin(ctx, plugin, userID, course, cfg)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			e.deps.Logger.ErrorContext(ctx, "Activity reset failed",
				"activity", plugin.Name(), "user_id", userID, "course_id", course.ID, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("Could not reset %s data: %v", plugin.Name(), err))
		}
	}

	if e.deps.Notification != nil {
		if err := e.deps.Notification.NotifyReset(ctx, userID, course, cfg); err != nil {
			e.deps.Logger.WarnContext(ctx, "Recompletion message failed", "user_id", userID, "course_id", course.ID, "error", err)
			result.Warnings = append(result.Warnings, "Could not send the recompletion message: "+err.Error())
		}
	}

	if e.deps.Events != nil {
		event := events.NewCompletionResetEvent(course.ID, userID, course.ID, string(trigger))
		if err := e.deps.Events.PublishEvent(ctx, event); err != nil {
			e.deps.Logger.ErrorContext(ctx, "Failed to publish completion reset event",
				"user_id", userID, "course_id", course.ID, "error", err)
		}
	}

	e.purgeCaches(ctx)
	e.audit(ctx, result)

	return result, nil
}

func (e *ResetEngine) course(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := e.deps.Courses.GetByID(ctx, courseID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrCourseNotFound, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("load course %d: %w", courseID, err)
	}
	return course, nil
}

func (e *ResetEngine) deleteGrades(ctx context.Context, userID, courseID uint) (int, error) {
	items, err := e.deps.Grades.GetItems(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	itemIDs := make([]uint, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	grades, err := e.deps.Grades.GetUserGrades(ctx, itemIDs, userID)
	if err != nil {
		return 0, err
	}

	actor := access.ActorFrom(ctx)
	for i := range grades {
		if err := e.deps.Grades.DeleteGrade(ctx, &grades[i], GradeDeletionSource, actor); err != nil {
			return i, err
		}
	}
	return len(grades), nil
}

// runPlugin isolates one activity type so a panic only costs that type.
func (e *ResetEngine) runPlugin(ctx context.Context, plugin plugins.ActivityResetPlugin, userID uint, course *models.Course, cfg *models.EffectiveConfig) (warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.LogRecovery(ctx, "reset_"+plugin.Name(), userID, r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return plugin.Reset(ctx, userID, course, cfg)
}

func (e *ResetEngine) purgeCaches(ctx context.Context) {
	if e.deps.Cache == nil {
		return
	}
	for _, ns := range []string{cache.NamespaceCompletion, cache.NamespaceCourseCompletion} {
		if err := e.deps.Cache.Purge(ctx, ns); err != nil {
			e.deps.Logger.WarnContext(ctx, "Failed to purge cache", "namespace", ns, "error", err)
		}
	}
}

func (e *ResetEngine) audit(ctx context.Context, result *ResetResult) {
	actor := access.ActorFrom(ctx)
	e.logger.LogResetAudit(ctx, ResetAuditEvent{
		ActorID:  actor,
		CourseID: result.CourseID,
		UserID:   result.UserID,
		Trigger:  string(result.Trigger),
		Warnings: len(result.Warnings),
	})

	if e.deps.AuditLog == nil {
		return
	}
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		warnings = []byte("[]")
	}
	entry := &models.RecompletionAuditLog{
		CourseID: result.CourseID,
		UserID:   result.UserID,
		ActorID:  actor,
		Trigger:  result.Trigger,
		Warnings: datatypes.JSON(warnings),
	}
	if err := e.deps.AuditLog.Create(ctx, entry); err != nil {
		e.deps.Logger.ErrorContext(ctx, "Failed to write recompletion audit log",
			"user_id", result.UserID, "course_id", result.CourseID, "error", err)
	}
}

func (e *ResetEngine) acquire(userID, courseID uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := [2]uint{userID, courseID}
	if _, busy := e.inFlight[key]; busy {
		return false
	}
	e.inFlight[key] = struct{}{}
	return true
}

func (e *ResetEngine) release(userID, courseID uint) {
	e.mu.Lock()
	delete(e.inFlight, [2]uint{userID, courseID})
	e.mu.Unlock()
}
