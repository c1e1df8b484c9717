package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

type QuestionnairePlugin struct {
	base
	db *gorm.DB
}

func NewQuestionnairePlugin(deps Deps) *QuestionnairePlugin {
	return &QuestionnairePlugin{
		base: base{name: "questionnaire", label: "questionnaire", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *QuestionnairePlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.Questionnaire{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.MoveTree(tx, activity.Archive,
			archive.Rows[models.QuestionnaireResponse, models.ArchivedQuestionnaireResponse]{
				Scope: userIn(userID, "questionnaire_id", ids),
				ID:    func(row models.QuestionnaireResponse) uint { return row.ID },
				Archive: func(row models.QuestionnaireResponse) models.ArchivedQuestionnaireResponse {
					return models.ArchivedQuestionnaireResponse{QuestionnaireResponseFields: row.QuestionnaireResponseFields, CourseID: course.ID}
				},
			},
			func(row *models.ArchivedQuestionnaireResponse) uint { return row.ID },
			archive.Children[models.QuestionnaireResponseText, models.ArchivedQuestionnaireResponseText]{
				ParentColumn: "response_id",
				ID:           func(row models.QuestionnaireResponseText) uint { return row.ID },
				Parent:       func(row models.QuestionnaireResponseText) uint { return row.ResponseID },
				Archive: func(row models.QuestionnaireResponseText, responseID uint) models.ArchivedQuestionnaireResponseText {
					return models.ArchivedQuestionnaireResponseText{
						ResponseID:                      responseID,
						QuestionnaireResponseTextFields: row.QuestionnaireResponseTextFields,
						CourseID:                        course.ID,
					}
				},
			},
		)
		return err
	})
}
