package handlers

import (
	"github.com/SAP-F-2025/recompletion-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== REQUEST STRUCTURES =====

// CourseSettingsRequest carries course overrides keyed by setting name
type CourseSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,setting_name,endkeys,max=65535"`
}

// SiteSettingsRequest carries site-wide defaults by setting name
type SiteSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,setting_name,endkeys,max=65535"`
}

// ResetUsersRequest selects the users of a course to reset
type ResetUsersRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,max=1000,unique,dive,gt=0"`
}

// SchedulePreviewRequest asks when a schedule text would next fire
type SchedulePreviewRequest struct {
	Schedule string `json:"schedule" validate:"required,max=255,schedule"`
}

// ExportRequest picks the archive export format
type ExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=xlsx csv"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestFields are attached to every handler log line.
func (h *BaseHandler) requestFields(c *gin.Context, extra []interface{}) []interface{} {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader(utils.RequestIDHeader),
	}
	if actor, ok := c.Get("user_id"); ok {
		fields = append(fields, "user_id", actor)
	}
	return append(fields, extra...)
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := h.requestFields(c, additionalFields)
	utils.GetLoggerFromContext(c, h.logger).Info(message, append(fields, "remote_addr", c.ClientIP())...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.requestFields(c, additionalFields)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Message: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}

	switch {
	case err != nil && statusCode >= 500:
		h.LogError(c, err, message, "status_code", statusCode)
	case err != nil:
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	default:
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, resp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}
