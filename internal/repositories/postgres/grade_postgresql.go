package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type GradePostgreSQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeStore {
	return &GradePostgreSQL{db: db, now: time.Now}
}

func (g GradePostgreSQL) GetItems(ctx context.Context, courseID uint) ([]models.GradeItem, error) {
	var items []models.GradeItem
	err := g.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&items).Error
	return items, err
}

func (g GradePostgreSQL) GetUserGrades(ctx context.Context, itemIDs []uint, userID uint) ([]models.Grade, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var grades []models.Grade
	err := g.db.WithContext(ctx).
		Where("item_id IN ? AND user_id = ?", itemIDs, userID).
		Order("id").
		Find(&grades).Error
	return grades, err
}

// DeleteGrade writes the history row and removes the grade in one transaction.
func (g GradePostgreSQL) DeleteGrade(ctx context.Context, grade *models.Grade, source string, loggedUser uint) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := models.GradeHistory{
			Action:       models.GradeHistoryDelete,
			OldID:        grade.ID,
			Source:       source,
			ItemID:       grade.ItemID,
			UserID:       grade.UserID,
			RawGrade:     grade.RawGrade,
			FinalGrade:   grade.FinalGrade,
			LoggedUser:   loggedUser,
			TimeModified: g.now().Unix(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Grade{}, grade.ID).Error
	})
}
