package repositories

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
)

// ===== SHARED RESULT STRUCTS =====

// CompletionCounts reports how many rows a core completion reset touched per table.
type CompletionCounts struct {
	CourseCompletions   int64 `json:"course_completions"`
	CriteriaCompletions int64 `json:"criteria_completions"`
	ModuleCompletions   int64 `json:"module_completions"`
}

// Empty reports whether nothing was found.
func (c CompletionCounts) Empty() bool {
	return c.CourseCompletions == 0 && c.CriteriaCompletions == 0 && c.ModuleCompletions == 0
}

// SweepCandidate is one (user, course) pair due for recompletion.
type SweepCandidate struct {
	UserID        uint  `json:"user_id"`
	CourseID      uint  `json:"course_id"`
	TimeCompleted int64 `json:"time_completed"`
}

type AuditLogFilters struct {
	CourseID uint `json:"course_id"`
	UserID   uint `json:"user_id"`
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// SettingsRepository stores per-course overrides and site-wide defaults as name/value rows.
type SettingsRepository interface {
	GetCourseSettings(ctx context.Context, courseID uint) (map[string]string, error)
	// SaveCourseSettings upserts every given name; names not present are left untouched.
	SaveCourseSettings(ctx context.Context, courseID uint, values map[string]string) error
	DeleteCourseSetting(ctx context.Context, courseID uint, name string) error
	// CoursesWithSetting lists courses having the setting at the given value.
	CoursesWithSetting(ctx context.Context, name, value string) ([]uint, error)

	GetSiteSettings(ctx context.Context) (map[string]string, error)
	SetSiteSetting(ctx context.Context, name, value string) error
	// RegisterSiteDefaults inserts defaults that do not exist yet and never overwrites.
	RegisterSiteDefaults(ctx context.Context, defaults map[string]string) (int, error)
}

// CompletionRepository owns the host completion tables and their archive copies.
type CompletionRepository interface {
	// ResetCourseCompletion archives (when archive is set) and then deletes the course,
	// criteria and module completion rows of one user in one course.
	ResetCourseCompletion(ctx context.Context, userID, courseID uint, archive bool) (CompletionCounts, error)

	// FindExpired returns completed pairs in the given courses whose completion is older than
	// the course's duration, keyed by course id.
	FindExpired(ctx context.Context, durations map[uint]int64, now int64) ([]SweepCandidate, error)
	// FindCompleted returns every user who completed the course.
	FindCompleted(ctx context.Context, courseID uint) ([]SweepCandidate, error)

	ListArchived(ctx context.Context, courseID uint) ([]models.ArchivedCourseCompletion, error)
}

// GradeStore is the host gradebook. DeleteGrade goes through the host deletion path so the
// grade history is written.
type GradeStore interface {
	GetItems(ctx context.Context, courseID uint) ([]models.GradeItem, error)
	GetUserGrades(ctx context.Context, itemIDs []uint, userID uint) ([]models.Grade, error)
	DeleteGrade(ctx context.Context, grade *models.Grade, source string, loggedUser uint) error
}

// CourseRepository resolves courses and installed activity modules.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	// CompletionEnabledIDs filters ids down to courses with completion tracking on.
	CompletionEnabledIDs(ctx context.Context, ids []uint) ([]uint, error)
	InstalledModules(ctx context.Context) ([]string, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

type EnrolmentRepository interface {
	GetInstances(ctx context.Context, courseID uint) ([]models.EnrolInstance, error)
	GetUserEnrolments(ctx context.Context, userID uint, instanceIDs []uint) ([]models.UserEnrolment, error)
}

type CapabilityRepository interface {
	// HasCapability checks a course level grant or a site level one (course id 0).
	HasCapability(ctx context.Context, userID uint, capability string, courseID uint) (bool, error)
	Grant(ctx context.Context, userID uint, capability string, courseID uint) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.RecompletionAuditLog) error
	List(ctx context.Context, filters AuditLogFilters) ([]models.RecompletionAuditLog, int64, error)
}

// AssignmentAttemptGranter is the host operation that opens one more submission attempt.
type AssignmentAttemptGranter interface {
	GrantExtraAttempt(ctx context.Context, userID uint, assign *models.Assign) error
}
