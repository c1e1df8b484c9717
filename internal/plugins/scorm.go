package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

type ScormPlugin struct {
	base
	db *gorm.DB
}

func NewScormPlugin(deps Deps) *ScormPlugin {
	return &ScormPlugin{
		base: base{name: "scorm", label: "SCORM", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *ScormPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.Scorm{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.Move(tx, activity.Archive, archive.Rows[models.ScormTrack, models.ArchivedScormTrack]{
			Scope: userIn(userID, "scorm_id", ids),
			ID:    func(row models.ScormTrack) uint { return row.ID },
			Archive: func(row models.ScormTrack) models.ArchivedScormTrack {
				return models.ArchivedScormTrack{ScormTrackFields: row.ScormTrackFields, CourseID: course.ID}
			},
		})
		return err
	})
}
