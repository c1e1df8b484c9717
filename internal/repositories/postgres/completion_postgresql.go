package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type CompletionPostgreSQL struct {
	db *gorm.DB
}

func NewCompletionPostgreSQL(db *gorm.DB) repositories.CompletionRepository {
	return &CompletionPostgreSQL{db: db}
}

func (c CompletionPostgreSQL) ResetCourseCompletion(ctx context.Context, userID, courseID uint, archiveRows bool) (repositories.CompletionCounts, error) {
	var counts repositories.CompletionCounts

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		counts.CourseCompletions, err = archive.Move(tx, archiveRows, archive.Rows[models.CourseCompletion, models.ArchivedCourseCompletion]{
			Scope: func(tx *gorm.DB) *gorm.DB {
				return tx.Where("user_id = ? AND course_id = ?", userID, courseID)
			},
			ID: func(row models.CourseCompletion) uint { return row.ID },
			Archive: func(row models.CourseCompletion) models.ArchivedCourseCompletion {
				return models.ArchivedCourseCompletion{CourseCompletionFields: row.CourseCompletionFields}
			},
		})
		if err != nil {
			return err
		}

		counts.CriteriaCompletions, err = archive.Move(tx, archiveRows, archive.Rows[models.CriteriaCompletion, models.ArchivedCriteriaCompletion]{
			Scope: func(tx *gorm.DB) *gorm.DB {
				return tx.Where("user_id = ? AND course_id = ?", userID, courseID)
			},
			ID: func(row models.CriteriaCompletion) uint { return row.ID },
			Archive: func(row models.CriteriaCompletion) models.ArchivedCriteriaCompletion {
				return models.ArchivedCriteriaCompletion{CriteriaCompletionFields: row.CriteriaCompletionFields}
			},
		})
		if err != nil {
			return err
		}

		counts.ModuleCompletions, err = archive.Move(tx, archiveRows, archive.Rows[models.ModuleCompletion, models.ArchivedModuleCompletion]{
			Scope: func(tx *gorm.DB) *gorm.DB {
				courseModules := tx.Session(&gorm.Session{NewDB: true}).
					Model(&models.CourseModule{}).
					Select("id").
					Where("course_id = ?", courseID)
				return tx.Where("user_id = ? AND course_module_id IN (?)", userID, courseModules)
			},
			ID: func(row models.ModuleCompletion) uint { return row.ID },
			Archive: func(row models.ModuleCompletion) models.ArchivedModuleCompletion {
				return models.ArchivedModuleCompletion{ModuleCompletionFields: row.ModuleCompletionFields, CourseID: courseID}
			},
		})
		return err
	})
	if err != nil {
		return repositories.CompletionCounts{}, fmt.Errorf("reset course completion: %w", err)
	}
	return counts, nil
}

func (c CompletionPostgreSQL) FindExpired(ctx context.Context, durations map[uint]int64, now int64) ([]repositories.SweepCandidate, error) {
	courseIDs := make([]uint, 0, len(durations))
	for courseID := range durations {
		courseIDs = append(courseIDs, courseID)
	}
	sort.Slice(courseIDs, func(i, j int) bool { return courseIDs[i] < courseIDs[j] })

	var candidates []repositories.SweepCandidate
	for _, courseID := range courseIDs {
		duration := durations[courseID]
		if duration <= 0 {
			continue
		}

		var rows []repositories.SweepCandidate
		err := c.db.WithContext(ctx).Model(&models.CourseCompletion{}).
			Select("user_id, course_id, time_completed").
			Where("course_id = ? AND time_completed > 0 AND time_completed < ?", courseID, now-duration).
			Order("user_id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, rows...)
	}
	return candidates, nil
}

func (c CompletionPostgreSQL) FindCompleted(ctx context.Context, courseID uint) ([]repositories.SweepCandidate, error) {
	var rows []repositories.SweepCandidate
	err := c.db.WithContext(ctx).Model(&models.CourseCompletion{}).
		Select("user_id, course_id, time_completed").
		Where("course_id = ? AND time_completed > 0", courseID).
		Order("user_id").
		Scan(&rows).Error
	return rows, err
}

func (c CompletionPostgreSQL) ListArchived(ctx context.Context, courseID uint) ([]models.ArchivedCourseCompletion, error) {
	var rows []models.ArchivedCourseCompletion
	err := c.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("time_completed DESC, id").
		Find(&rows).Error
	return rows, err
}
