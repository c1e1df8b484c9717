package postgres

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, notFound(err, repositories.ErrNotFound)
	}
	return &course, nil
}

func (c CoursePostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []models.Course
	err := c.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&courses).Error
	return courses, err
}

func (c CoursePostgreSQL) CompletionEnabledIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var enabled []uint
	err := c.db.WithContext(ctx).Model(&models.Course{}).
		Where("id IN ? AND enable_completion = ?", ids, true).
		Order("id").
		Pluck("id", &enabled).Error
	return enabled, err
}

func (c CoursePostgreSQL) InstalledModules(ctx context.Context) ([]string, error) {
	var names []string
	err := c.db.WithContext(ctx).Model(&models.Module{}).Order("name").Pluck("name", &names).Error
	return names, err
}
