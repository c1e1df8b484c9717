package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

// CustomCertPlugin removes issued certificates so a new one is issued on recompletion.
type CustomCertPlugin struct {
	base
	db *gorm.DB
}

func NewCustomCertPlugin(deps Deps) *CustomCertPlugin {
	return &CustomCertPlugin{
		base: base{name: "customcert", label: "certificate", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *CustomCertPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.CustomCert{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.Move(tx, activity.Archive, archive.Rows[models.CustomCertIssue, models.ArchivedCustomCertIssue]{
			Scope: userIn(userID, "customcert_id", ids),
			ID:    func(row models.CustomCertIssue) uint { return row.ID },
			Archive: func(row models.CustomCertIssue) models.ArchivedCustomCertIssue {
				return models.ArchivedCustomCertIssue{CustomCertIssueFields: row.CustomCertIssueFields, CourseID: course.ID}
			},
		})
		return err
	})
}
