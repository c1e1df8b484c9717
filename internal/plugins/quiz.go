package plugins

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

type QuizPlugin struct {
	base
	db *gorm.DB
}

func NewQuizPlugin(deps Deps) *QuizPlugin {
	return &QuizPlugin{
		base: base{name: "quiz", label: "quiz", policies: withExtraAttempt},
		db:   deps.DB,
	}
}

func (p *QuizPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	switch activity.Policy {
	case models.PolicyDelete:
		return nil, p.deleteAttempts(ctx, userID, course, activity.Archive)
	case models.PolicyExtraAttempt:
		return nil, p.grantExtraAttempts(ctx, userID, course)
	default:
		return nil, nil
	}
}

func (p *QuizPlugin) deleteAttempts(ctx context.Context, userID uint, course *models.Course, archiveRows bool) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.Quiz{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}
		scope := userIn(userID, "quiz_id", ids)

		if _, err := archive.Move(tx, archiveRows, archive.Rows[models.QuizAttempt, models.ArchivedQuizAttempt]{
			Scope: scope,
			ID:    func(row models.QuizAttempt) uint { return row.ID },
			Archive: func(row models.QuizAttempt) models.ArchivedQuizAttempt {
				return models.ArchivedQuizAttempt{QuizAttemptFields: row.QuizAttemptFields, CourseID: course.ID}
			},
		}); err != nil {
			return err
		}

		_, err = archive.Move(tx, archiveRows, archive.Rows[models.QuizGrade, models.ArchivedQuizGrade]{
			Scope: scope,
			ID:    func(row models.QuizGrade) uint { return row.ID },
			Archive: func(row models.QuizGrade) models.ArchivedQuizGrade {
				return models.ArchivedQuizGrade{QuizGradeFields: row.QuizGradeFields, CourseID: course.ID}
			},
		})
		return err
	})
}

// grantExtraAttempts raises the user's attempt override on every limited quiz already
// attempted to the attempts used plus the quiz limit. Attempt history is kept.
func (p *QuizPlugin) grantExtraAttempts(ctx context.Context, userID uint, course *models.Course) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quizzes []models.Quiz
		if err := tx.Where("course_id = ? AND attempts > 0", course.ID).Order("id").Find(&quizzes).Error; err != nil {
			return err
		}

		for _, quiz := range quizzes {
			var used int64
			if err := tx.Model(&models.QuizAttempt{}).
				Where("quiz_id = ? AND user_id = ? AND preview = ?", quiz.ID, userID, false).
				Count(&used).Error; err != nil {
				return err
			}
			if used == 0 {
				continue
			}

			if err := raiseOverride(tx, quiz.ID, userID, int(used)+quiz.Attempts); err != nil {
				return fmt.Errorf("quiz %d: %w", quiz.ID, err)
			}
		}
		return nil
	})
}

// raiseOverride creates or raises a user override. An override of 0 means unlimited and is
// never replaced.
func raiseOverride(tx *gorm.DB, quizID, userID uint, allowed int) error {
	var override models.QuizOverride
	err := tx.Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		uid := userID
		return tx.Create(&models.QuizOverride{QuizID: quizID, UserID: &uid, Attempts: &allowed}).Error
	}
	if err != nil {
		return err
	}

	if override.Attempts != nil && (*override.Attempts == 0 || *override.Attempts >= allowed) {
		return nil
	}
	return tx.Model(&override).Update("attempts", allowed).Error
}
