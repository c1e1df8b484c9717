package plugins

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/archive"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

type AssignPlugin struct {
	base
	db      *gorm.DB
	access  access.Checker
	granter repositories.AssignmentAttemptGranter
	events  events.EventPublisher
	logger  *slog.Logger
}

func NewAssignPlugin(deps Deps) *AssignPlugin {
	return &AssignPlugin{
		base:    base{name: "assign", label: "assignment", policies: withExtraAttempt},
		db:      deps.DB,
		access:  deps.Access,
		granter: deps.Granter,
		events:  deps.Events,
		logger:  deps.Logger,
	}
}

func (p *AssignPlugin) RenderSettingsFields(form FormBuilder) {
	p.base.RenderSettingsFields(form)
	form.AddField(FormField{
		Name:    models.SettingAssignEvent,
		Label:   "Announce extra assignment attempts",
		Type:    FieldCheckbox,
		Default: "0",
		Group:   p.name,
		Help:    "Publish an event whenever a reset opens a new assignment attempt.",
	})
}

func (p *AssignPlugin) RegisterSiteSettings(settings SettingsRegistry) {
	p.base.RegisterSiteSettings(settings)
	settings.Register(models.SettingAssignEvent, "0")
}

func (p *AssignPlugin) Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error) {
	activity := cfg.Activity(p.name)
	switch activity.Policy {
	case models.PolicyDelete:
		return nil, p.deleteSubmissions(ctx, userID, course, activity.Archive)
	case models.PolicyExtraAttempt:
		return p.grantExtraAttempts(ctx, userID, course, cfg.AssignEvent)
	default:
		return nil, nil
	}
}

func (p *AssignPlugin) deleteSubmissions(ctx context.Context, userID uint, course *models.Course, archiveRows bool) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := instanceIDs(tx, &models.Assign{}, course.ID)
		if err != nil || len(ids) == 0 {
			return err
		}
		scope := userIn(userID, "assign_id", ids)

		if _, err := archive.Move(tx, archiveRows, archive.Rows[models.AssignSubmission, models.ArchivedAssignSubmission]{
			Scope: scope,
			ID:    func(row models.AssignSubmission) uint { return row.ID },
			Archive: func(row models.AssignSubmission) models.ArchivedAssignSubmission {
				return models.ArchivedAssignSubmission{AssignSubmissionFields: row.AssignSubmissionFields, CourseID: course.ID}
			},
		}); err != nil {
			return err
		}

		_, err = archive.Move(tx, archiveRows, archive.Rows[models.AssignGrade, models.ArchivedAssignGrade]{
			Scope: scope,
			ID:    func(row models.AssignGrade) uint { return row.ID },
			Archive: func(row models.AssignGrade) models.ArchivedAssignGrade {
				return models.ArchivedAssignGrade{AssignGradeFields: row.AssignGradeFields, CourseID: course.ID}
			},
		})
		return err
	})
}

// grantExtraAttempts opens a new attempt on every limited assignment the user already
// submitted to. Each grant needs the grading capability; without it the assignment is
// skipped with a warning.
func (p *AssignPlugin) grantExtraAttempts(ctx context.Context, userID uint, course *models.Course, announce bool) ([]string, error) {
	var assigns []models.Assign
	if err := p.db.WithContext(ctx).
		Where("course_id = ? AND max_attempts > 0", course.ID).
		Order("id").
		Find(&assigns).Error; err != nil {
		return nil, err
	}

	var warnings []string
	for i := range assigns {
		assign := &assigns[i]

		var submitted int64
		if err := p.db.WithContext(ctx).Model(&models.AssignSubmission{}).
			Where("assign_id = ? AND user_id = ?", assign.ID, userID).
			Count(&submitted).Error; err != nil {
			return warnings, err
		}
		if submitted == 0 {
			continue
		}

		allowed, err := p.access.HasCapability(ctx, access.CapabilityAssignGrade, course.ID)
		if err != nil {
			return warnings, err
		}
		if !allowed {
			warnings = append(warnings, fmt.Sprintf(
				"Could not add an extra attempt to assignment %q: grading permission (%s) is required",
				assign.Name, access.CapabilityAssignGrade))
			continue
		}

		if err := p.granter.GrantExtraAttempt(ctx, userID, assign); err != nil {
			return warnings, fmt.Errorf("assign %d: %w", assign.ID, err)
		}

		if announce && p.events != nil {
			event := events.NewAssignAttemptGrantedEvent(course.ID, userID, assign.ID)
			if err := p.events.PublishEvent(ctx, event); err != nil {
				p.logger.WarnContext(ctx, "Failed to publish assign attempt event",
					"assign_id", assign.ID, "user_id", userID, "error", err)
			}
		}
	}
	return warnings, nil
}
