package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/cache"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/mail"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/plugins"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/recompletion-service/internal/restrictions"
	"github.com/SAP-F-2025/recompletion-service/internal/services"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/SAP-F-2025/recompletion-service/internal/utils"
	"github.com/SAP-F-2025/recompletion-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	admin  *models.User
	course *models.Course
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	logger := testutil.Logger()
	publisher := events.NewMockEventPublisher(logger)
	capabilities := access.NewChecker(postgres.NewCapabilityPostgreSQL(db))

	registry, err := plugins.NewRegistry(nil, plugins.Deps{
		DB:      db,
		Access:  capabilities,
		Granter: postgres.NewAssignAttemptPostgreSQL(db),
		Events:  publisher,
		Logger:  logger,
	}, nil)
	require.NoError(t, err)

	settings := postgres.NewSettingsPostgreSQL(db)
	courses := postgres.NewCoursePostgreSQL(db)
	users := postgres.NewUserPostgreSQL(db)
	completions := postgres.NewCompletionPostgreSQL(db)
	auditLog := postgres.NewAuditLogPostgreSQL(db)
	resolver := services.NewConfigResolver(settings, registry, logger)

	engine := services.NewResetEngine(services.EngineDeps{
		Courses:      courses,
		Completions:  completions,
		Grades:       postgres.NewGradePostgreSQL(db),
		AuditLog:     auditLog,
		Resolver:     resolver,
		Registry:     registry,
		Restriction:  restrictions.NewEnrolMethodRestriction(postgres.NewEnrolmentPostgreSQL(db)),
		Notification: services.NewNotificationService(mail.NewMockMailer(), users, services.NotificationConfig{SiteURL: "https://lms.example.com"}, logger),
		Events:       publisher,
		Cache:        cache.NewMemoryCache(),
		Logger:       logger,
	})

	manager := NewHandlerManager(RecompletionDeps{
		Courses:  courses,
		Users:    users,
		AuditLog: auditLog,
		Resolver: resolver,
		Engine:   engine,
		Sweep:    services.NewSweepScheduler(settings, courses, completions, resolver, engine, logger),
		Reports:  services.NewReportService(completions, users, auditLog, logger),
		Access:   capabilities,
	}, validator.New(), utils.NewSlogLogger(logger))

	course := testutil.SeedCourse(t, db, "Safety 101")
	admin := testutil.SeedUser(t, db, "admin")
	testutil.SeedCapability(t, db, admin.ID, course.ID, access.CapabilityManage)

	return &testServer{db: db, router: manager.NewRouter(), admin: admin, course: course}
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(UserIDHeader, strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) coursePath(suffix string) string {
	return "/api/v1/courses/" + strconv.FormatUint(uint64(s.course.ID), 10) + "/recompletion" + suffix
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecompletionHandler_Authorization(t *testing.T) {
	s := newTestServer(t)
	student := testutil.SeedUser(t, s.db, "student")

	tests := []struct {
		name   string
		userID uint
		path   string
		want   int
	}{
		{name: "anonymous", userID: 0, path: s.coursePath("/settings"), want: http.StatusUnauthorized},
		{name: "without capability", userID: student.ID, path: s.coursePath("/settings"), want: http.StatusForbidden},
		{name: "manager", userID: s.admin.ID, path: s.coursePath("/settings"), want: http.StatusOK},
		{name: "bad course id", userID: s.admin.ID, path: "/api/v1/courses/abc/recompletion/settings", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, tt.userID, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRecompletionHandler_UnknownCourse(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedCapability(t, s.db, s.admin.ID, 0, access.CapabilityManage)

	w := s.do(t, http.MethodGet, "/api/v1/courses/999/recompletion/settings", s.admin.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecompletionHandler_Settings(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, s.coursePath("/settings"), s.admin.ID, CourseSettingsRequest{Settings: map[string]string{
		models.SettingEnable:               "1",
		models.SettingRecompletionDuration: "86400",
		"quiz":                             "2",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["enable"])
	assert.Equal(t, float64(86400), data["recompletion_duration"])

	w = s.do(t, http.MethodGet, s.coursePath("/settings"), s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)["data"].(map[string]interface{})
	quiz := body["config"].(map[string]interface{})["activities"].(map[string]interface{})["quiz"].(map[string]interface{})
	assert.Equal(t, float64(models.PolicyExtraAttempt), quiz["policy"])
	assert.NotEmpty(t, body["form"].(map[string]interface{})["fields"])
}

func TestRecompletionHandler_SettingsValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty", body: CourseSettingsRequest{}},
		{name: "bad name", body: CourseSettingsRequest{Settings: map[string]string{"Quiz": "1"}}},
		{name: "unknown setting", body: CourseSettingsRequest{Settings: map[string]string{"forum": "1"}}},
		{name: "past schedule", body: CourseSettingsRequest{Settings: map[string]string{models.SettingRecompletionSchedule: "yesterday"}}},
		{name: "malformed json", body: "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPut, s.coursePath("/settings"), s.admin.ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRecompletionHandler_ResetUser(t *testing.T) {
	s := newTestServer(t)
	learner := testutil.SeedUser(t, s.db, "learner")
	testutil.SeedCompletion(t, s.db, s.course.ID, learner.ID, 5000)

	w := s.do(t, http.MethodPost, s.coursePath("/users/"+strconv.FormatUint(uint64(learner.ID), 10)+"/reset"), s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, string(models.TriggerOnDemand), data["trigger"])
	assert.Zero(t, testutil.Count(t, s.db, &models.CourseCompletion{}, ""))

	w = s.do(t, http.MethodGet, s.coursePath("/resets"), s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resets := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), resets["total"])
}

func TestRecompletionHandler_ResetUserErrors(t *testing.T) {
	s := newTestServer(t)
	learner := testutil.SeedUser(t, s.db, "learner")
	testutil.SeedEnrolment(t, s.db, s.course.ID, learner.ID, "manual")
	testutil.SeedSettings(t, s.db, s.course.ID, map[string]string{models.SettingRestrictEnrol: "self"})

	w := s.do(t, http.MethodPost, s.coursePath("/users/999/reset"), s.admin.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, s.coursePath("/users/0/reset"), s.admin.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, s.coursePath("/users/"+strconv.FormatUint(uint64(learner.ID), 10)+"/reset"), s.admin.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"rule":"restrictenrol"`)
}

func TestRecompletionHandler_ResetUsers(t *testing.T) {
	s := newTestServer(t)
	a := testutil.SeedUser(t, s.db, "a")
	b := testutil.SeedUser(t, s.db, "b")
	testutil.SeedCompletion(t, s.db, s.course.ID, a.ID, 5000)
	testutil.SeedCompletion(t, s.db, s.course.ID, b.ID, 5000)

	w := s.do(t, http.MethodPost, s.coursePath("/reset"), s.admin.ID, ResetUsersRequest{UserIDs: []uint{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["processed"])
	assert.Len(t, data["results"], 2)

	w = s.do(t, http.MethodPost, s.coursePath("/reset"), s.admin.ID, ResetUsersRequest{UserIDs: []uint{a.ID, a.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecompletionHandler_ExportArchive(t *testing.T) {
	s := newTestServer(t)
	learner := testutil.SeedUser(t, s.db, "learner")
	testutil.SeedCompletion(t, s.db, s.course.ID, learner.ID, 5000)
	w := s.do(t, http.MethodPost, s.coursePath("/users/"+strconv.FormatUint(uint64(learner.ID), 10)+"/reset"), s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, s.coursePath("/archive/export?format=csv"), s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	w = s.do(t, http.MethodGet, s.coursePath("/archive/export"), s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())

	w = s.do(t, http.MethodGet, s.coursePath("/archive/export?format=pdf"), s.admin.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecompletionHandler_PreviewSchedule(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recompletion/schedule/preview", s.admin.ID, SchedulePreviewRequest{Schedule: "tomorrow"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.NotZero(t, data["next_reset_time"])

	w = s.do(t, http.MethodPost, "/api/v1/recompletion/schedule/preview", s.admin.ID, SchedulePreviewRequest{Schedule: "whenever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecompletionHandler_RunSweep(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/recompletion/sweep", s.admin.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "course level capability is not enough")

	testutil.SeedCapability(t, s.db, s.admin.ID, 0, access.CapabilityManage)
	w = s.do(t, http.MethodPost, "/api/v1/recompletion/sweep", s.admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decode(t, w)["data"].(map[string]interface{})["processed"])
}

func TestRecompletionHandler_UpdateSiteSettings(t *testing.T) {
	s := newTestServer(t)
	path := "/api/v1/recompletion/site-settings"
	body := SiteSettingsRequest{Settings: map[string]string{models.SiteSettingEnableCompletion: "0"}}

	w := s.do(t, http.MethodPut, path, s.admin.ID, body)
	assert.Equal(t, http.StatusForbidden, w.Code, "course level capability is not enough")

	testutil.SeedCapability(t, s.db, s.admin.ID, 0, access.CapabilityManage)

	invalid := []SiteSettingsRequest{
		{},
		{Settings: map[string]string{models.SiteSettingEnableCompletion: "maybe"}},
		{Settings: map[string]string{models.SettingRecompletionSchedule: "Jan 1"}},
	}
	for _, req := range invalid {
		w = s.do(t, http.MethodPut, path, s.admin.ID, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPut, path, s.admin.ID, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	site, err := postgres.NewSettingsPostgreSQL(s.db).GetSiteSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0", site[models.SiteSettingEnableCompletion])
}
