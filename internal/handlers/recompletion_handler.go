package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/SAP-F-2025/recompletion-service/internal/services"
	"github.com/SAP-F-2025/recompletion-service/internal/utils"
	"github.com/SAP-F-2025/recompletion-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// RecompletionDeps are the services behind the recompletion endpoints.
type RecompletionDeps struct {
	Courses  repositories.CourseRepository
	Users    repositories.UserRepository
	AuditLog repositories.AuditLogRepository
	Resolver *services.ConfigResolver
	Engine   *services.ResetEngine
	Sweep    *services.SweepScheduler
	Reports  services.ReportService
	Access   access.Checker
}

type RecompletionHandler struct {
	BaseHandler
	deps      RecompletionDeps
	validator *validator.Validator
}

func NewRecompletionHandler(deps RecompletionDeps, validator *validator.Validator, logger utils.Logger) *RecompletionHandler {
	return &RecompletionHandler{
		BaseHandler: NewBaseHandler(logger),
		deps:        deps,
		validator:   validator,
	}
}

// GetSettings returns the effective configuration of a course with the settings form
// @Summary Get course recompletion settings
// @Tags recompletion
// @Produce json
// @Param course_id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{course_id}/recompletion/settings [get]
func (h *RecompletionHandler) GetSettings(c *gin.Context) {
	courseID, ok := h.authorizedCourse(c, "view recompletion settings")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.deps.Resolver.Resolve(ctx, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	form, err := h.deps.Resolver.SettingsForm(ctx)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Recompletion settings retrieved", gin.H{
		"config": cfg,
		"form":   form,
	})
}

// UpdateSettings stores course overrides
// @Summary Update course recompletion settings
// @Tags recompletion
// @Accept json
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param settings body CourseSettingsRequest true "Overrides"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /courses/{course_id}/recompletion/settings [put]
func (h *RecompletionHandler) UpdateSettings(c *gin.Context) {
	courseID, ok := h.authorizedCourse(c, "update recompletion settings")
	if !ok {
		return
	}

	var req CourseSettingsRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Updating recompletion settings", "course_id", courseID, "settings", len(req.Settings))

	ctx := c.Request.Context()
	if err := h.deps.Resolver.SaveCourseSettings(ctx, courseID, req.Settings); err != nil {
		h.handleServiceError(c, err)
		return
	}
	cfg, err := h.deps.Resolver.Resolve(ctx, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Recompletion settings saved", cfg)
}

// UpdateSiteSettings stores site-wide defaults, including the completion switch
// @Summary Update site recompletion defaults
// @Tags recompletion
// @Accept json
// @Produce json
// @Param settings body SiteSettingsRequest true "Defaults"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /recompletion/site-settings [put]
func (h *RecompletionHandler) UpdateSiteSettings(c *gin.Context) {
	if !h.authorize(c, 0, "update site recompletion settings") {
		return
	}

	var req SiteSettingsRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Updating site recompletion settings", "settings", len(req.Settings))

	if err := h.deps.Resolver.SaveSiteSettings(c.Request.Context(), req.Settings); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Site recompletion settings saved", gin.H{"saved": len(req.Settings)})
}

// ResetUser resets one user's completion on demand
// @Summary Reset one user
// @Tags recompletion
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param user_id path uint true "User ID"
// @Success 200 {object} SuccessResponse{data=services.ResetResult}
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /courses/{course_id}/recompletion/users/{user_id}/reset [post]
func (h *RecompletionHandler) ResetUser(c *gin.Context) {
	courseID, ok := h.authorizedCourse(c, "reset completion")
	if !ok {
		return
	}
	userID := ParseUintParam(c, "user_id")
	if userID == 0 {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.deps.Users.GetByID(ctx, userID); err != nil {
		if services.IsNotFound(err) {
			err = fmt.Errorf("%w: %d", services.ErrUserNotFound, userID)
		}
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Resetting user completion", "course_id", courseID, "target_user_id", userID)

	result, err := h.deps.Engine.ResetUser(ctx, userID, courseID, models.TriggerOnDemand)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Completion reset"
	if !result.Clean() {
		message = "Completion reset with warnings"
	}
	h.RespondWithSuccess(c, http.StatusOK, message, result)
}

// ResetUsers resets a selection of users; one failure does not stop the others
// @Summary Reset selected users
// @Tags recompletion
// @Accept json
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param users body ResetUsersRequest true "Users"
// @Success 200 {object} SuccessResponse
// @Router /courses/{course_id}/recompletion/reset [post]
func (h *RecompletionHandler) ResetUsers(c *gin.Context) {
	courseID, ok := h.authorizedCourse(c, "reset completion")
	if !ok {
		return
	}

	var req ResetUsersRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Resetting selected users", "course_id", courseID, "users", len(req.UserIDs))

	batch, err := h.deps.Engine.ResetUsers(c.Request.Context(), courseID, req.UserIDs, models.TriggerOnDemand)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := batch.Err(); err != nil {
		h.LogWarn(c, "Some resets failed", "course_id", courseID, "failed", batch.Failed(), "error", err)
	}

	h.RespondWithSuccess(c, http.StatusOK, "Reset finished", gin.H{
		"processed": batch.Processed(),
		"skipped":   batch.Skipped(),
		"failed":    batch.Failed(),
		"results":   batch.Results,
	})
}

// ListResets pages through the reset audit trail of a course
// @Summary List resets
// @Tags recompletion
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Router /courses/{course_id}/recompletion/resets [get]
func (h *RecompletionHandler) ListResets(c *gin.Context) {
	courseID, ok := h.authorizedCourse(c, "view resets")
	if !ok {
		return
	}

	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)
	if size > 100 {
		size = 100
	}

	entries, total, err := h.deps.AuditLog.List(c.Request.Context(), repositories.AuditLogFilters{
		CourseID: courseID,
		Limit:    size,
		Offset:   (page - 1) * size,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Resets retrieved", gin.H{
		"resets": entries,
		"total":  total,
		"page":   page,
		"size":   size,
	})
}

// ExportArchive downloads the archived completions of a course
// @Summary Export archived completions
// @Tags recompletion
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param course_id path uint true "Course ID"
// @Param format query string false "xlsx or csv"
// @Router /courses/{course_id}/recompletion/archive/export [get]
func (h *RecompletionHandler) ExportArchive(c *gin.Context) {
	courseID, ok := h.authorizedCourse(c, "export archived completions")
	if !ok {
		return
	}

	var req ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request parameters", err, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		data        []byte
		err         error
		contentType string
		extension   string
	)
	switch req.Format {
	case "csv":
		data, err = h.deps.Reports.ExportArchivedCompletionsCSV(ctx, courseID)
		contentType, extension = "text/csv", "csv"
	default:
		data, err = h.deps.Reports.ExportArchivedCompletions(ctx, courseID)
		contentType, extension = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("recompletion_archive_course_%d_%s.%s", courseID, time.Now().UTC().Format("20060102"), extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// PreviewSchedule reports when a schedule text would next reset a course
// @Summary Preview a recompletion schedule
// @Tags recompletion
// @Accept json
// @Produce json
// @Param schedule body SchedulePreviewRequest true "Schedule"
// @Router /recompletion/schedule/preview [post]
func (h *RecompletionHandler) PreviewSchedule(c *gin.Context) {
	var req SchedulePreviewRequest
	if !h.bind(c, &req) {
		return
	}

	next := services.ParseSchedule(req.Schedule, time.Now())
	if next == 0 {
		h.handleServiceError(c, services.ErrInvalidSchedule)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Schedule is valid", gin.H{
		"schedule":        req.Schedule,
		"next_reset_time": next,
		"next_reset_at":   time.Unix(next, 0).UTC().Format(time.RFC3339),
	})
}

// RunSweep runs one recompletion sweep immediately
// @Summary Run the recompletion sweep
// @Tags recompletion
// @Produce json
// @Router /recompletion/sweep [post]
func (h *RecompletionHandler) RunSweep(c *gin.Context) {
	if !h.authorize(c, 0, "run the recompletion sweep") {
		return
	}

	h.LogRequest(c, "Running recompletion sweep on request")
	summary := h.deps.Sweep.Run(c.Request.Context())

	h.RespondWithSuccess(c, http.StatusOK, "Sweep finished", gin.H{
		"started_at": summary.StartedAt,
		"duration":   summary.Duration.String(),
		"courses":    summary.Courses,
		"processed":  summary.Result.Processed(),
		"skipped":    summary.Result.Skipped(),
		"failed":     summary.Result.Failed(),
	})
}

// ===== HELPERS =====

// authorizedCourse parses the course id and checks the manage capability in that course.
func (h *RecompletionHandler) authorizedCourse(c *gin.Context, action string) (uint, bool) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return 0, false
	}
	if !h.authorize(c, courseID, action) {
		return 0, false
	}

	if _, err := h.deps.Courses.GetByID(c.Request.Context(), courseID); err != nil {
		if services.IsNotFound(err) {
			err = fmt.Errorf("%w: %d", services.ErrCourseNotFound, courseID)
		}
		h.handleServiceError(c, err)
		return 0, false
	}
	return courseID, true
}

func (h *RecompletionHandler) authorize(c *gin.Context, courseID uint, action string) bool {
	ctx := c.Request.Context()
	allowed, err := h.deps.Access.HasCapability(ctx, access.CapabilityManage, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return false
	}
	if !allowed {
		h.handleServiceError(c, services.NewPermissionError(access.ActorFrom(ctx), courseID, access.CapabilityManage, action))
		return false
	}
	return true
}

func (h *RecompletionHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

func (h *RecompletionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"capability": permissionError.Capability,
			"action":     permissionError.Action,
			"course_id":  permissionError.CourseID,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Course not found", err)
	case errors.Is(err, services.ErrUserNotFound):
		h.RespondWithError(c, http.StatusNotFound, "User not found", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, services.ErrRestricted):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "User does not qualify for recompletion in this course", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case services.IsBusinessRule(err):
		h.RespondWithError(c, http.StatusUnprocessableEntity, err.Error(), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
