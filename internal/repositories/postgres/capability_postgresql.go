package postgres

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type CapabilityPostgreSQL struct {
	db *gorm.DB
}

func NewCapabilityPostgreSQL(db *gorm.DB) repositories.CapabilityRepository {
	return &CapabilityPostgreSQL{db: db}
}

func (c CapabilityPostgreSQL) HasCapability(ctx context.Context, userID uint, capability string, courseID uint) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.UserCapability{}).
		Where("user_id = ? AND capability = ? AND course_id IN ?", userID, capability, []uint{0, courseID}).
		Count(&count).Error
	return count > 0, err
}

func (c CapabilityPostgreSQL) Grant(ctx context.Context, userID uint, capability string, courseID uint) error {
	grant := models.UserCapability{UserID: userID, CourseID: courseID, Capability: capability}
	return c.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND capability = ?", userID, courseID, capability).
		FirstOrCreate(&grant).Error
}
