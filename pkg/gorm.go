package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/recompletion-service/internal/config"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Models lists every table the service reads or writes. Host tables are included so a
// standalone or test database can be created from scratch.
func Models() []interface{} {
	return append([]interface{}{
		// host: courses, users, enrolment, permissions
		&models.Course{},
		&models.Module{},
		&models.CourseModule{},
		&models.User{},
		&models.UserCapability{},
		&models.EnrolInstance{},
		&models.UserEnrolment{},

		// host: completion and gradebook
		&models.CourseCompletion{},
		&models.CriteriaCompletion{},
		&models.ModuleCompletion{},
		&models.GradeItem{},
		&models.Grade{},
		&models.GradeHistory{},

		// host: activities
		&models.Quiz{},
		&models.QuizAttempt{},
		&models.QuizGrade{},
		&models.QuizOverride{},
		&models.Scorm{},
		&models.ScormTrack{},
		&models.Assign{},
		&models.AssignSubmission{},
		&models.AssignGrade{},
		&models.Lesson{},
		&models.LessonAttempt{},
		&models.LessonGrade{},
		&models.LessonTimer{},
		&models.Choice{},
		&models.ChoiceAnswer{},
		&models.CustomCert{},
		&models.CustomCertIssue{},
		&models.H5PActivity{},
		&models.H5PAttempt{},
		&models.H5PAttemptResult{},
		&models.LTI{},
		&models.LTISubmission{},
		&models.HotPot{},
		&models.HotPotAttempt{},
		&models.Questionnaire{},
		&models.QuestionnaireResponse{},
		&models.QuestionnaireResponseText{},

		// recompletion
		&models.CourseSetting{},
		&models.SiteSetting{},
		&models.RecompletionAuditLog{},
	}, ArchiveModels()...)
}

// ArchiveModels lists the archive tables, one or more per activity type plus the core
// completion archives.
func ArchiveModels() []interface{} {
	return []interface{}{
		&models.ArchivedCourseCompletion{},
		&models.ArchivedCriteriaCompletion{},
		&models.ArchivedModuleCompletion{},
		&models.ArchivedQuizAttempt{},
		&models.ArchivedQuizGrade{},
		&models.ArchivedScormTrack{},
		&models.ArchivedAssignSubmission{},
		&models.ArchivedAssignGrade{},
		&models.ArchivedLessonAttempt{},
		&models.ArchivedLessonGrade{},
		&models.ArchivedLessonTimer{},
		&models.ArchivedChoiceAnswer{},
		&models.ArchivedCustomCertIssue{},
		&models.ArchivedH5PAttempt{},
		&models.ArchivedH5PAttemptResult{},
		&models.ArchivedLTISubmission{},
		&models.ArchivedHotPotAttempt{},
		&models.ArchivedQuestionnaireResponse{},
		&models.ArchivedQuestionnaireResponseText{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
