package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

type LTIPlugin struct {
	base
	db *gorm.DB
}

func NewLTIPlugin(deps Deps) *LTIPlugin {
	return &LTIPlugin{
		base: base{name: "lti", label: "external tool", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *LTIPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.LTI{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.Move(tx, activity.Archive, archive.Rows[models.LTISubmission, models.ArchivedLTISubmission]{
			Scope: userIn(userID, "lti_id", ids),
			ID:    func(row models.LTISubmission) uint { return row.ID },
			Archive: func(row models.LTISubmission) models.ArchivedLTISubmission {
				return models.ArchivedLTISubmission{LTISubmissionFields: row.LTISubmissionFields, CourseID: course.ID}
			},
		})
		return err
	})
}
