package postgres

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type AuditLogPostgreSQL struct {
	db *gorm.DB
}

func NewAuditLogPostgreSQL(db *gorm.DB) repositories.AuditLogRepository {
	return &AuditLogPostgreSQL{db: db}
}

func (a AuditLogPostgreSQL) Create(ctx context.Context, entry *models.RecompletionAuditLog) error {
	return a.db.WithContext(ctx).Create(entry).Error
}

func (a AuditLogPostgreSQL) List(ctx context.Context, filters repositories.AuditLogFilters) ([]models.RecompletionAuditLog, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.RecompletionAuditLog{})
	if filters.CourseID != 0 {
		query = query.Where("course_id = ?", filters.CourseID)
	}
	if filters.UserID != 0 {
		query = query.Where("user_id = ?", filters.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.RecompletionAuditLog
	if err := applyPagination(query, filters).Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
