package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

// AssignAttemptPostgreSQL opens a new submission attempt the way the host assignment module
// does when a grader reopens a submission manually.
type AssignAttemptPostgreSQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAssignAttemptPostgreSQL(db *gorm.DB) repositories.AssignmentAttemptGranter {
	return &AssignAttemptPostgreSQL{db: db, now: time.Now}
}

func (a AssignAttemptPostgreSQL) GrantExtraAttempt(ctx context.Context, userID uint, assign *models.Assign) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest models.AssignSubmission
		err := tx.Where("assign_id = ? AND user_id = ?", assign.ID, userID).
			Order("attempt_number DESC, id DESC").
			First(&latest).Error
		if err != nil {
			return notFound(err, fmt.Errorf("no submission to reopen for user %d in assign %d: %w", userID, assign.ID, repositories.ErrNotFound))
		}

		if err := tx.Model(&models.AssignSubmission{}).
			Where("assign_id = ? AND user_id = ?", assign.ID, userID).
			Update("latest", false).Error; err != nil {
			return err
		}

		now := a.now().Unix()
		reopened := models.AssignSubmission{AssignSubmissionFields: models.AssignSubmissionFields{
			AssignID:      assign.ID,
			UserID:        userID,
			TimeCreated:   now,
			TimeModified:  now,
			Status:        models.SubmissionStatusReopened,
			AttemptNumber: latest.AttemptNumber + 1,
			Latest:        true,
		}}
		return tx.Create(&reopened).Error
	})
}
