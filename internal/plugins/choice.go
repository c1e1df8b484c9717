package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

type ChoicePlugin struct {
	base
	db *gorm.DB
}

func NewChoicePlugin(deps Deps) *ChoicePlugin {
	return &ChoicePlugin{
		base: base{name: "choice", label: "choice", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *ChoicePlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.Choice{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.Move(tx, activity.Archive, archive.Rows[models.ChoiceAnswer, models.ArchivedChoiceAnswer]{
			Scope: userIn(userID, "choice_id", ids),
			ID:    func(row models.ChoiceAnswer) uint { return row.ID },
			Archive: func(row models.ChoiceAnswer) models.ArchivedChoiceAnswer {
				return models.ArchivedChoiceAnswer{ChoiceAnswerFields: row.ChoiceAnswerFields, CourseID: course.ID}
			},
		})
		return err
	})
}
