package postgres

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type EnrolmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrolmentPostgreSQL(db *gorm.DB) repositories.EnrolmentRepository {
	return &EnrolmentPostgreSQL{db: db}
}

func (e EnrolmentPostgreSQL) GetInstances(ctx context.Context, courseID uint) ([]models.EnrolInstance, error) {
	var instances []models.EnrolInstance
	err := e.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&instances).Error
	return instances, err
}

func (e EnrolmentPostgreSQL) GetUserEnrolments(ctx context.Context, userID uint, instanceIDs []uint) ([]models.UserEnrolment, error) {
	if len(instanceIDs) == 0 {
		return nil, nil
	}
	var enrolments []models.UserEnrolment
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND enrol_id IN ?", userID, instanceIDs).
		Order("id").
		Find(&enrolments).Error
	return enrolments, err
}
