package plugins

import (
	"context"

	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

// H5PActivityPlugin archives attempts together with their result rows. Results are relinked
// to the archived attempt ids.
type H5PActivityPlugin struct {
	base
	db *gorm.DB
}

func NewH5PActivityPlugin(deps Deps) *H5PActivityPlugin {
	return &H5PActivityPlugin{
		base: base{name: "h5pactivity", label: "H5P", policies: deleteOnly},
		db:   deps.DB,
	}
}

func (p *H5PActivityPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	if activity.Policy != models.PolicyDelete {
		return nil, nil
	}

	return nil, p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.H5PActivity{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}

		_, err = archive.MoveTree(tx, activity.Archive,
			archive.Rows[models.H5PAttempt, models.ArchivedH5PAttempt]{
				Scope: userIn(userID, "h5pactivity_id", ids),
				ID:    func(row models.H5PAttempt) uint { return row.ID },
				Archive: func(row models.H5PAttempt) models.ArchivedH5PAttempt {
					return models.ArchivedH5PAttempt{H5PAttemptFields: row.H5PAttemptFields, CourseID: course.ID}
				},
			},
			func(row *models.ArchivedH5PAttempt) uint { return row.ID },
			archive.Children[models.H5PAttemptResult, models.ArchivedH5PAttemptResult]{
				ParentColumn: "attempt_id",
				ID:           func(row models.H5PAttemptResult) uint { return row.ID },
				Parent:       func(row models.H5PAttemptResult) uint { return row.AttemptID },
				Archive: func(row models.H5PAttemptResult, attemptID uint) models.ArchivedH5PAttemptResult {
					return models.ArchivedH5PAttemptResult{
						AttemptID:              attemptID,
						H5PAttemptResultFields: row.H5PAttemptResultFields,
						CourseID:               course.ID,
					}
				},
			},
		)
		return err
	})
}
