package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
)

// SweepSummary is what one sweep pass did.
type SweepSummary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Courses   int           `json:"courses"`
	Result    *BatchResult  `json:"result"`
}

// SweepScheduler finds every (user, course) pair due for recompletion and resets it.
// A pass is best effort: nothing marks a pair as in progress, so a pair missed by a crashed
// pass is picked up again the next time the query matches it.
type SweepScheduler struct {
	settings    repositories.SettingsRepository
	courses     repositories.CourseRepository
	completions repositories.CompletionRepository
	resolver    *ConfigResolver
	engine      *ResetEngine
	logger      *slog.Logger
	now         func() time.Time
}

func NewSweepScheduler(
	settings repositories.SettingsRepository,
	courses repositories.CourseRepository,
	completions repositories.CompletionRepository,
	resolver *ConfigResolver,
	engine *ResetEngine,
	logger *slog.Logger,
) *SweepScheduler {
	return &SweepScheduler{
		settings:    settings,
		courses:     courses,
		completions: completions,
		resolver:    resolver,
		engine:      engine,
		logger:      logger.With("component", "sweep"),
		now:         time.Now,
	}
}

// Run performs one pass. Failures are logged and collected in the summary, never returned.
func (s *SweepScheduler) Run(ctx context.Context) *SweepSummary {
	ctx = access.WithActor(ctx, access.SystemActorID)
	now := s.now()
	summary := &SweepSummary{StartedAt: now, Result: &BatchResult{}}
	defer func() {
		summary.Duration = time.Since(now)
		s.logger.InfoContext(ctx, "Recompletion sweep finished",
			"courses", summary.Courses,
			"reset", summary.Result.Processed(),
			"skipped", summary.Result.Skipped(),
			"failed", len(summary.Result.Failed()),
			"duration", summary.Duration)
		if err := summary.Result.Err(); err != nil {
			s.logger.ErrorContext(ctx, "Recompletion sweep had failures", "error", err)
		}
	}()

	site, err := s.settings.GetSiteSettings(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load site settings", "error", err)
		return summary
	}
	if v, ok := site[models.SiteSettingEnableCompletion]; ok && !parseFlag(v) {
		s.logger.InfoContext(ctx, "Completion tracking disabled site-wide, nothing to sweep")
		return summary
	}

	courses, configs, err := s.dueCourses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load recompletion courses", "error", err)
		return summary
	}
	summary.Courses = len(courses)

	durations := make(map[uint]int64)
	var scheduled []uint
	for id, cfg := range configs {
		switch cfg.Type {
		case models.RecompletionPeriod:
			if cfg.Duration > 0 {
				durations[id] = cfg.Duration
			}
		case models.RecompletionSchedule:
			if cfg.NextResetTime > 0 && cfg.NextResetTime <= now.Unix() {
				scheduled = append(scheduled, id)
			}
		}
	}
	sort.Slice(scheduled, func(i, j int) bool { return scheduled[i] < scheduled[j] })

	if len(durations) > 0 {
		candidates, err := s.completions.FindExpired(ctx, durations, now.Unix())
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to find expired completions", "error", err)
		}
		for _, c := range candidates {
			s.reset(ctx, summary.Result, c, courses[c.CourseID], configs[c.CourseID], models.TriggerSweep)
		}
	}

	for _, courseID := range scheduled {
		s.runSchedule(ctx, summary.Result, courses[courseID], configs[courseID], now)
	}

	return summary
}

// dueCourses returns the courses with recompletion and completion tracking enabled, with the
// configuration of each resolved once for the whole pass.
func (s *SweepScheduler) dueCourses(ctx context.Context) (map[uint]*models.Course, map[uint]*models.EffectiveConfig, error) {
	ids, err := s.settings.CoursesWithSetting(ctx, models.SettingEnable, "1")
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}
	ids, err = s.courses.CompletionEnabledIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.courses.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	courses := make(map[uint]*models.Course, len(rows))
	configs := make(map[uint]*models.EffectiveConfig, len(rows))
	for i := range rows {
		course := &rows[i]
		cfg, err := s.resolver.Resolve(ctx, course.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to resolve recompletion config", "course_id", course.ID, "error", err)
			continue
		}
		if !cfg.Enable {
			continue
		}
		courses[course.ID] = course
		configs[course.ID] = cfg
	}
	return courses, configs, nil
}

func (s *SweepScheduler) runSchedule(ctx context.Context, batch *BatchResult, course *models.Course, cfg *models.EffectiveConfig, now time.Time) {
	candidates, err := s.completions.FindCompleted(ctx, course.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to find completed users", "course_id", course.ID, "error", err)
		return
	}
	for _, c := range candidates {
		s.reset(ctx, batch, c, course, cfg, models.TriggerSchedule)
	}

	next := ParseSchedule(cfg.Schedule, now)
	if next == 0 {
		s.logger.WarnContext(ctx, "Recompletion schedule has no future occurrence, disabling it",
			"course_id", course.ID, "schedule", cfg.Schedule)
	}
	err = s.settings.SaveCourseSettings(ctx, course.ID, map[string]string{
		models.SettingNextResetTime: strconv.FormatInt(next, 10),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store next reset time", "course_id", course.ID, "error", err)
	}
}

func (s *SweepScheduler) reset(ctx context.Context, batch *BatchResult, c repositories.SweepCandidate, course *models.Course, cfg *models.EffectiveConfig, trigger models.ResetTrigger) {
	if course == nil || cfg == nil {
		batch.add(c.UserID, c.CourseID, nil, fmt.Errorf("%w: %d", ErrCourseNotFound, c.CourseID))
		return
	}
	if err := ctx.Err(); err != nil {
		batch.add(c.UserID, c.CourseID, nil, err)
		return
	}

	result, err := s.engine.Reset(ctx, c.UserID, course, cfg, trigger)
	var warnings []string
	if result != nil {
		warnings = result.Warnings
	}
	batch.add(c.UserID, c.CourseID, warnings, err)
	if err != nil && !IsBusinessRule(err) {
		s.logger.ErrorContext(ctx, "Recompletion reset failed", "user_id", c.UserID, "course_id", c.CourseID, "error", err)
	}
}
