// Package plugins holds one reset plugin per supported activity type. Each plugin only touches
// its activity's own tables and its own archive tables.
package plugins

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

// ActivityResetPlugin resets one activity type for one user in one course.
type ActivityResetPlugin interface {
	// Name is the activity module name, also used as the policy setting name.
	Name() string
	RenderSettingsFields(form FormBuilder)
	RegisterSiteSettings(settings SettingsRegistry)
	// Reset applies the configured policy. Warnings describe work that was skipped on purpose;
	// an error means the activity type could not be processed.
	Reset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) ([]string, error)
}

// Deps are the collaborators a plugin may need.
type Deps struct {
	DB      *gorm.DB
	Access  access.Checker
	Granter repositories.AssignmentAttemptGranter
	Events  events.EventPublisher
	Logger  *slog.Logger
}

// base implements the settings hooks shared by every plugin.
type base struct {
	name     string
	label    string
	policies []models.Policy
}

func (b base) Name() string {
	return b.name
}

func (b base) RenderSettingsFields(form FormBuilder) {
	form.AddField(PolicyField(b.name, b.label, b.policies))
	form.AddField(FormField{
		Name:    models.ArchiveSettingName(b.name),
		Label:   "Archive old " + b.label + " data",
		Type:    FieldCheckbox,
		Default: "1",
		Group:   b.name,
	})
}

func (b base) RegisterSiteSettings(settings SettingsRegistry) {
	settings.Register(b.name, "0")
	settings.Register(models.ArchiveSettingName(b.name), "1")
}

var deleteOnly = []models.Policy{models.PolicyNothing, models.PolicyDelete}

var withExtraAttempt = []models.Policy{models.PolicyNothing, models.PolicyDelete, models.PolicyExtraAttempt}

// instanceIDs returns the ids of an activity table's instances inside the course.
func instanceIDs(tx *gorm.DB, model interface{}, courseID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(model).Where("course_id = ?", courseID).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// userIn scopes a query to one user's rows under the given activity instances.
func userIn(userID uint, column string, ids []uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND "+column+" IN ?", userID, ids)
	}
}
