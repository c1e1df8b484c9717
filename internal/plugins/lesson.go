package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

// LessonPlugin clears page attempts, grades and timers together so a lesson restarts cleanly.
type LessonPlugin struct {
	base
	db *gorm.DB
}

func NewLessonPlugin(deps Deps) *LessonPlugin {
	return &LessonPlugin{
		base: base{name: "lesson", label: "lesson", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *LessonPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.Lesson{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}
		scope := userIn(userID, "lesson_id", ids)

		if _, err := archive.Move(tx, activity.Archive, archive.Rows[models.LessonAttempt, models.ArchivedLessonAttempt]{
			Scope: scope,
			ID:    func(row models.LessonAttempt) uint { return row.ID },
			Archive: func(row models.LessonAttempt) models.ArchivedLessonAttempt {
				return models.ArchivedLessonAttempt{LessonAttemptFields: row.LessonAttemptFields, CourseID: course.ID}
			},
		}); err != nil {
			return err
		}

		if _, err := archive.Move(tx, activity.Archive, archive.Rows[models.LessonGrade, models.ArchivedLessonGrade]{
			Scope: scope,
			ID:    func(row models.LessonGrade) uint { return row.ID },
			Archive: func(row models.LessonGrade) models.ArchivedLessonGrade {
				return models.ArchivedLessonGrade{LessonGradeFields: row.LessonGradeFields, CourseID: course.ID}
			},
		}); err != nil {
			return err
		}

		_, err = archive.Move(tx, activity.Archive, archive.Rows[models.LessonTimer, models.ArchivedLessonTimer]{
			Scope: scope,
			ID:    func(row models.LessonTimer) uint { return row.ID },
			Archive: func(row models.LessonTimer) models.ArchivedLessonTimer {
				return models.ArchivedLessonTimer{LessonTimerFields: row.LessonTimerFields, CourseID: course.ID}
			},
		})
		return err
	})
}
