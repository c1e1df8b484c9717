package services

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/cache"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/plugins"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/SAP-F-2025/recompletion-service/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestResetEngine_QuizDeleteScenario(t *testing.T) {
	h := newHarness(t)
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "Safety 101")
	user := testutil.SeedUser(t, h.db, "u")
	completion := testutil.SeedCompletion(t, h.db, course.ID, user.ID, time.Now().Add(-time.Hour).Unix())
	testutil.SeedGrade(t, h.db, course.ID, user.ID, 80)
	quiz, attempt, grade := seedQuizAttempt(t, h.db, course.ID, user.ID, 0)
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{
		models.SettingEnable:                "1",
		models.SettingArchiveCompletionData: "1",
		models.SettingDeleteGradeData:       "1",
		"quiz":                              "1",
		"archivequiz":                       "1",
	})

	result, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, int64(1), result.Counts.CourseCompletions)
	assert.Equal(t, 1, result.Grades)

	// activity data moved
	assert.Zero(t, testutil.Count(t, h.db, &models.QuizAttempt{}, "quiz_id = ? AND user_id = ?", quiz.ID, user.ID))
	var archived []models.ArchivedQuizAttempt
	require.NoError(t, h.db.Where("quiz_id = ? AND user_id = ?", quiz.ID, user.ID).Find(&archived).Error)
	require.Len(t, archived, 1)
	assert.Equal(t, course.ID, archived[0].CourseID)
	assert.Equal(t, attempt.QuizAttemptFields, archived[0].QuizAttemptFields)

	assert.Zero(t, testutil.Count(t, h.db, &models.QuizGrade{}, ""))
	var archivedGrades []models.ArchivedQuizGrade
	require.NoError(t, h.db.Find(&archivedGrades).Error)
	require.Len(t, archivedGrades, 1)
	assert.Equal(t, grade.QuizGradeFields, archivedGrades[0].QuizGradeFields)

	// core completion moved
	assert.Zero(t, testutil.Count(t, h.db, &models.CourseCompletion{}, "user_id = ? AND course_id = ?", user.ID, course.ID))
	var archivedCompletion models.ArchivedCourseCompletion
	require.NoError(t, h.db.First(&archivedCompletion).Error)
	assert.Equal(t, completion.CourseCompletionFields, archivedCompletion.CourseCompletionFields)
	assert.Zero(t, testutil.Count(t, h.db, &models.CriteriaCompletion{}, ""))
	assert.Zero(t, testutil.Count(t, h.db, &models.ModuleCompletion{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.ArchivedModuleCompletion{}, "course_id = ?", course.ID))

	// grades went through the host deletion path
	assert.Zero(t, testutil.Count(t, h.db, &models.Grade{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.GradeHistory{}, "action = ? AND source = ?", models.GradeHistoryDelete, GradeDeletionSource))

	// event fired once
	reset := h.publisher.EventsOfType(events.EventCompletionReset)
	require.Len(t, reset, 1)
	payload, ok := reset[0].Data.(events.CompletionResetEvent)
	require.True(t, ok)
	assert.Equal(t, course.ID, payload.CourseID)
	assert.Equal(t, user.ID, payload.UserID)
	assert.Equal(t, string(models.TriggerOnDemand), payload.Trigger)

	assert.Equal(t, []string{cache.NamespaceCompletion, cache.NamespaceCourseCompletion}, h.cache.Purges())

	sent := h.mailer.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Course completion reset: Safety 101", sent[0].Subject)
	assert.Equal(t, user.Email, sent[0].To.Address)

	var audit []models.RecompletionAuditLog
	require.NoError(t, h.db.Find(&audit).Error)
	require.Len(t, audit, 1)
	assert.Equal(t, models.TriggerOnDemand, audit[0].Trigger)
	assert.JSONEq(t, `[]`, string(audit[0].Warnings))
}

func TestResetEngine_ExtraAttemptKeepsHistory(t *testing.T) {
	h := newHarness(t)
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	quiz, _, _ := seedQuizAttempt(t, h.db, course.ID, user.ID, 2)
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{"quiz": "2"})

	_, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)

	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.QuizAttempt{}, "quiz_id = ?", quiz.ID))
	assert.Zero(t, testutil.Count(t, h.db, &models.ArchivedQuizAttempt{}, ""))

	var override models.QuizOverride
	require.NoError(t, h.db.Where("quiz_id = ? AND user_id = ?", quiz.ID, user.ID).First(&override).Error)
	require.NotNil(t, override.Attempts)
	assert.Equal(t, 3, *override.Attempts)
}

func TestResetEngine_IdempotentReentry(t *testing.T) {
	h := newHarness(t)
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	testutil.SeedCompletion(t, h.db, course.ID, user.ID, 5000)
	seedQuizAttempt(t, h.db, course.ID, user.ID, 0)
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{"quiz": "1"})

	first, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)
	second, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)

	assert.False(t, first.Counts.Empty())
	assert.True(t, second.Counts.Empty())
	assert.Empty(t, second.Warnings)
	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.ArchivedCourseCompletion{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.ArchivedQuizAttempt{}, ""))
}

func TestResetEngine_NoDataIsSafe(t *testing.T) {
	h := newHarness(t)
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")

	overrides := map[string]string{
		models.SettingArchiveCompletionData: "1",
		models.SettingDeleteGradeData:       "1",
	}
	for _, name := range plugins.SupportedActivities() {
		overrides[name] = strconv.Itoa(int(models.PolicyDelete))
		overrides[models.ArchiveSettingName(name)] = "1"
	}
	testutil.SeedSettings(t, h.db, course.ID, overrides)

	result, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.Counts.Empty())

	for _, model := range pkg.ArchiveModels() {
		assert.Zero(t, testutil.Count(t, h.db, model, ""), "%T", model)
	}
}

func TestResetEngine_PluginFailureIsIsolated(t *testing.T) {
	h := newHarness(t, func(db *gorm.DB, d *EngineDeps) {
		choice := plugins.NewChoicePlugin(plugins.Deps{DB: db, Logger: testutil.Logger()})
		d.Registry = plugins.NewRegistryOf(nil, brokenPlugin{name: "boom"}, brokenPlugin{name: "bang", panics: true}, choice)
	})
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	poll := &models.Choice{CourseID: course.ID, Name: "Poll"}
	require.NoError(t, h.db.Create(poll).Error)
	answer := &models.ChoiceAnswer{ChoiceAnswerFields: models.ChoiceAnswerFields{ChoiceID: poll.ID, UserID: user.ID, OptionID: 3, TimeModified: 10}}
	require.NoError(t, h.db.Create(answer).Error)
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{"choice": "1", "archivechoice": "1"})

	result, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Could not reset boom data")
	assert.Contains(t, result.Warnings[1], "Could not reset bang data")

	assert.Zero(t, testutil.Count(t, h.db, &models.ChoiceAnswer{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.ArchivedChoiceAnswer{}, "course_id = ?", course.ID))
	assert.Len(t, h.publisher.EventsOfType(events.EventCompletionReset), 1)
	assert.Len(t, h.cache.Purges(), 2)
}

func TestResetEngine_RestrictedUserIsUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	testutil.SeedEnrolment(t, h.db, course.ID, user.ID, "manual")
	testutil.SeedCompletion(t, h.db, course.ID, user.ID, 5000)
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{models.SettingRestrictEnrol: "self"})

	_, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	assert.ErrorIs(t, err, ErrRestricted)
	var rule *BusinessRuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, models.SettingRestrictEnrol, rule.Rule)

	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.CourseCompletion{}, ""))
	assert.Zero(t, testutil.Count(t, h.db, &models.ArchivedCourseCompletion{}, ""))
	assert.Empty(t, h.publisher.GetPublishedEvents())
	assert.Empty(t, h.cache.Purges())
	assert.Empty(t, h.mailer.Messages())
}

func TestResetEngine_MailFailureIsAWarning(t *testing.T) {
	h := newHarness(t)
	h.mailer.Err = errors.New("relay refused")
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	testutil.SeedCompletion(t, h.db, course.ID, user.ID, 5000)

	result, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "relay refused")
	assert.Zero(t, testutil.Count(t, h.db, &models.CourseCompletion{}, ""))
}

func TestResetEngine_EmailDisabled(t *testing.T) {
	h := newHarness(t)
	ctx := systemContext()

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{models.SettingEmailEnable: "0"})

	_, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)
	assert.Empty(t, h.mailer.Messages())
}

func TestResetEngine_UnknownCourse(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.ResetUser(systemContext(), 1, 999, models.TriggerOnDemand)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.True(t, IsNotFound(err))
}

func TestResetEngine_AuditRecordsActor(t *testing.T) {
	h := newHarness(t)

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	admin := testutil.SeedUser(t, h.db, "admin")
	ctx := access.WithActor(systemContext(), admin.ID)

	_, err := h.engine.ResetUser(ctx, user.ID, course.ID, models.TriggerOnDemand)
	require.NoError(t, err)

	var entry models.RecompletionAuditLog
	require.NoError(t, h.db.First(&entry).Error)
	assert.Equal(t, admin.ID, entry.ActorID)
	assert.Equal(t, user.ID, entry.UserID)
}

func TestResetEngine_ResetUsersContinuesPastFailures(t *testing.T) {
	failUser := new(uint)
	h := newHarness(t, withFailingUser(failUser))
	course := testutil.SeedCourse(t, h.db, "C")
	ok := testutil.SeedUser(t, h.db, "ok")
	bad := testutil.SeedUser(t, h.db, "bad")
	also := testutil.SeedUser(t, h.db, "also")
	for _, u := range []*models.User{ok, bad, also} {
		testutil.SeedCompletion(t, h.db, course.ID, u.ID, 5000)
	}
	*failUser = bad.ID

	batch, err := h.engine.ResetUsers(systemContext(), course.ID, []uint{ok.ID, bad.ID, also.ID, ok.ID}, models.TriggerOnDemand)
	require.NoError(t, err)

	assert.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Processed())
	assert.Equal(t, []uint{bad.ID}, batch.Failed())
	require.Error(t, batch.Err())
	assert.Contains(t, batch.Err().Error(), "disk full")

	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.CourseCompletion{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, &models.CourseCompletion{}, "user_id = ?", bad.ID))
}

func TestResetEngine_RejectsConcurrentResetOfSamePair(t *testing.T) {
	h := newHarness(t)
	course := testutil.SeedCourse(t, h.db, "C")

	require.True(t, h.engine.acquire(7, course.ID))
	defer h.engine.release(7, course.ID)

	_, err := h.engine.ResetUser(systemContext(), 7, course.ID, models.TriggerOnDemand)
	assert.ErrorIs(t, err, ErrResetInProgress)
	assert.True(t, IsConflict(err))
}
