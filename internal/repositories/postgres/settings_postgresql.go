package postgres

import (
	"context"
	"sort"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsPostgreSQL struct {
	db *gorm.DB
}

func NewSettingsPostgreSQL(db *gorm.DB) repositories.SettingsRepository {
	return &SettingsPostgreSQL{db: db}
}

func (s SettingsPostgreSQL) GetCourseSettings(ctx context.Context, courseID uint) (map[string]string, error) {
	var rows []models.CourseSetting
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&rows).Error; err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values, nil
}

func (s SettingsPostgreSQL) SaveCourseSettings(ctx context.Context, courseID uint, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]models.CourseSetting, 0, len(values))
	for _, name := range names {
		rows = append(rows, models.CourseSetting{CourseID: courseID, Name: name, Value: values[name]})
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}

func (s SettingsPostgreSQL) DeleteCourseSetting(ctx context.Context, courseID uint, name string) error {
	return s.db.WithContext(ctx).
		Where("course_id = ? AND name = ?", courseID, name).
		Delete(&models.CourseSetting{}).Error
}

func (s SettingsPostgreSQL) CoursesWithSetting(ctx context.Context, name, value string) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.CourseSetting{}).
		Where("name = ? AND value = ?", name, value).
		Order("course_id").
		Pluck("course_id", &ids).Error
	return ids, err
}

func (s SettingsPostgreSQL) GetSiteSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.SiteSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values, nil
}

func (s SettingsPostgreSQL) SetSiteSetting(ctx context.Context, name, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.SiteSetting{Name: name, Value: value}).Error
}

func (s SettingsPostgreSQL) RegisterSiteDefaults(ctx context.Context, defaults map[string]string) (int, error) {
	if len(defaults) == 0 {
		return 0, nil
	}

	rows := make([]models.SiteSetting, 0, len(defaults))
	for name, value := range defaults {
		rows = append(rows, models.SiteSetting{Name: name, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return int(result.RowsAffected), result.Error
}
