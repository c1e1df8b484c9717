package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

// HotPotPlugin covers the legacy HotPot quiz module.
type HotPotPlugin struct {
	base
	db *gorm.DB
}

func NewHotPotPlugin(deps Deps) *HotPotPlugin {
	return &HotPotPlugin{
		base: base{name: "hotpot", label: "HotPot", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *HotPotPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.HotPot{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.Move(tx, activity.Archive, archive.Rows[models.HotPotAttempt, models.ArchivedHotPotAttempt]{
			Scope: userIn(userID, "hotpot_id", ids),
			ID:    func(row models.HotPotAttempt) uint { return row.ID },
			Archive: func(row models.HotPotAttempt) models.ArchivedHotPotAttempt {
				return models.ArchivedHotPotAttempt{HotPotAttemptFields: row.HotPotAttemptFields, CourseID: course.ID}
			},
		})
		return err
	})
}
