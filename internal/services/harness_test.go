package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/cache"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/mail"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/plugins"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/recompletion-service/internal/restrictions"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// harness wires the engine against an in-memory database the way main does.
type harness struct {
	db        *gorm.DB
	settings  repositories.SettingsRepository
	resolver  *ConfigResolver
	engine    *ResetEngine
	sweep     *SweepScheduler
	publisher *events.MockEventPublisher
	mailer    *mail.MockMailer
	cache     *cache.MemoryCache
}

// harnessOption adjusts the engine collaborators before the engine is built.
type harnessOption func(db *gorm.DB, deps *EngineDeps)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	db := testutil.DB(t)
	logger := testutil.Logger()
	publisher := events.NewMockEventPublisher(logger)
	mailer := mail.NewMockMailer()
	memCache := cache.NewMemoryCache()

	settings := postgres.NewSettingsPostgreSQL(db)
	courses := postgres.NewCoursePostgreSQL(db)
	users := postgres.NewUserPostgreSQL(db)
	completions := postgres.NewCompletionPostgreSQL(db)

	registry, err := plugins.NewRegistry(nil, plugins.Deps{
		DB:      db,
		Access:  access.NewChecker(postgres.NewCapabilityPostgreSQL(db)),
		Granter: postgres.NewAssignAttemptPostgreSQL(db),
		Events:  publisher,
		Logger:  logger,
	}, nil)
	require.NoError(t, err)

	deps := EngineDeps{
		Courses:     courses,
		Completions: completions,
		Grades:      postgres.NewGradePostgreSQL(db),
		AuditLog:    postgres.NewAuditLogPostgreSQL(db),
		Registry:    registry,
		Restriction: restrictions.NewEnrolMethodRestriction(postgres.NewEnrolmentPostgreSQL(db)),
		Notification: NewNotificationService(mailer, users, NotificationConfig{
			SiteURL: "https://lms.example.com",
		}, logger),
		Events: publisher,
		Cache:  memCache,
		Logger: logger,
	}
	for _, opt := range opts {
		opt(db, &deps)
	}
	deps.Resolver = NewConfigResolver(settings, deps.Registry, logger)
	engine := NewResetEngine(deps)

	return &harness{
		db:        db,
		settings:  settings,
		resolver:  deps.Resolver,
		engine:    engine,
		sweep:     NewSweepScheduler(settings, courses, deps.Completions, deps.Resolver, engine, logger),
		publisher: publisher,
		mailer:    mailer,
		cache:     memCache,
	}
}

// failingCompletions fails the core completion reset of one user, chosen after seeding.
type failingCompletions struct {
	repositories.CompletionRepository
	userID *uint
}

func (f failingCompletions) ResetCourseCompletion(ctx context.Context, userID, courseID uint, archive bool) (repositories.CompletionCounts, error) {
	if userID == *f.userID {
		return repositories.CompletionCounts{}, errors.New("disk full")
	}
	return f.CompletionRepository.ResetCourseCompletion(ctx, userID, courseID, archive)
}

func withFailingUser(userID *uint) harnessOption {
	return func(_ *gorm.DB, d *EngineDeps) {
		d.Completions = failingCompletions{CompletionRepository: d.Completions, userID: userID}
	}
}

// brokenPlugin fails its reset, by error or by panic.
type brokenPlugin struct {
	name   string
	panics bool
}

func (b brokenPlugin) Name() string                                { return b.name }
func (brokenPlugin) RenderSettingsFields(plugins.FormBuilder)      {}
func (brokenPlugin) RegisterSiteSettings(plugins.SettingsRegistry) {}

func (b brokenPlugin) Reset(context.Context, uint, *models.Course, *models.EffectiveConfig) ([]string, error) {
	if b.panics {
		panic("nil activity instance")
	}
	return nil, errors.New("table is locked")
}

func seedQuizAttempt(t *testing.T, db *gorm.DB, courseID, userID uint, limit int) (*models.Quiz, *models.QuizAttempt, *models.QuizGrade) {
	t.Helper()
	quiz := &models.Quiz{CourseID: courseID, Name: "Quiz", Attempts: limit}
	require.NoError(t, db.Create(quiz).Error)

	sum := 7.0
	attempt := &models.QuizAttempt{QuizAttemptFields: models.QuizAttemptFields{
		QuizID: quiz.ID, UserID: userID, Attempt: 1, UniqueID: 11, Layout: "1,0",
		State: "finished", TimeStart: 1000, TimeFinish: 1600, TimeModified: 1600, SumGrades: &sum,
	}}
	require.NoError(t, db.Create(attempt).Error)

	grade := &models.QuizGrade{QuizGradeFields: models.QuizGradeFields{QuizID: quiz.ID, UserID: userID, Grade: 7, TimeModified: 1600}}
	require.NoError(t, db.Create(grade).Error)
	return quiz, attempt, grade
}

func systemContext() context.Context {
	return access.WithActor(context.Background(), access.SystemActorID)
}
