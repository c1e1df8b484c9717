package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/plugins"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
)

// coreDefaults are used when neither the course nor the site sets a value.
var coreDefaults = map[string]string{
	models.SettingEnable:                "0",
	models.SettingRecompletionType:      string(models.RecompletionPeriod),
	models.SettingRecompletionDuration:  "0",
	models.SettingRecompletionSchedule:  "",
	models.SettingNextResetTime:         "0",
	models.SettingDeleteGradeData:       "1",
	models.SettingArchiveCompletionData: "1",
	models.SettingEmailEnable:           "1",
	models.SettingEmailSubject:          "",
	models.SettingEmailBody:             "",
	models.SettingAssignEvent:           "0",
	models.SettingUnenrolEnable:         "0",
	models.SettingRestrictEnrol:         "",
}

// BuildEffectiveConfig merges site defaults and course overrides field by field. A name present
// in course wins, otherwise the site value is used, otherwise the built-in default.
func BuildEffectiveConfig(courseID uint, site, course map[string]string, activities []string) *models.EffectiveConfig {
	value := func(name string) string {
		if v, ok := course[name]; ok {
			return v
		}
		if v, ok := site[name]; ok {
			return v
		}
		return coreDefaults[name]
	}
	flag := func(name string) bool {
		return parseFlag(value(name))
	}

	cfg := &models.EffectiveConfig{
		CourseID:              courseID,
		Enable:                flag(models.SettingEnable),
		Type:                  parseType(value(models.SettingRecompletionType)),
		Duration:              parseInt(value(models.SettingRecompletionDuration)),
		Schedule:              strings.TrimSpace(value(models.SettingRecompletionSchedule)),
		NextResetTime:         parseInt(value(models.SettingNextResetTime)),
		EmailEnable:           flag(models.SettingEmailEnable),
		EmailSubject:          value(models.SettingEmailSubject),
		EmailBody:             value(models.SettingEmailBody),
		DeleteGradeData:       flag(models.SettingDeleteGradeData),
		ArchiveCompletionData: flag(models.SettingArchiveCompletionData),
		AssignEvent:           flag(models.SettingAssignEvent),
		UnenrolEnable:         flag(models.SettingUnenrolEnable),
		RestrictEnrol:         splitList(value(models.SettingRestrictEnrol)),
		Activities:            make(map[string]models.ActivityConfig, len(activities)),
	}

	for _, name := range activities {
		policy := models.Policy(parseInt(value(name)))
		if policy < models.PolicyNothing || policy > models.PolicyExtraAttempt {
			policy = models.PolicyNothing
		}
		archive := "1"
		if v := value(models.ArchiveSettingName(name)); v != "" {
			archive = v
		}
		cfg.Activities[name] = models.ActivityConfig{
			Policy:  policy,
			Archive: parseFlag(archive),
		}
	}

	return cfg
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseType(v string) models.RecompletionType {
	switch t := models.RecompletionType(strings.TrimSpace(v)); t {
	case models.RecompletionSchedule, models.RecompletionOnDemand:
		return t
	default:
		return models.RecompletionPeriod
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConfigResolver loads effective configuration and owns the course settings form.
type ConfigResolver struct {
	settings repositories.SettingsRepository
	registry *plugins.Registry
	logger   *ServiceLogger
	now      func() time.Time
}

func NewConfigResolver(settings repositories.SettingsRepository, registry *plugins.Registry, logger *slog.Logger) *ConfigResolver {
	return &ConfigResolver{
		settings: settings,
		registry: registry,
		logger:   NewServiceLogger(logger, LogConfig{Service: "recompletion", Component: "config"}),
		now:      time.Now,
	}
}

// Resolve returns the effective configuration of a course.
func (r *ConfigResolver) Resolve(ctx context.Context, courseID uint) (*models.EffectiveConfig, error) {
	site, err := r.settings.GetSiteSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load site settings: %w", err)
	}
	course, err := r.settings.GetCourseSettings(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course %d settings: %w", courseID, err)
	}
	return BuildEffectiveConfig(courseID, site, course, r.registry.Names()), nil
}

// SiteDefaults returns the core defaults plus every installed plugin's defaults.
func (r *ConfigResolver) SiteDefaults(ctx context.Context) (plugins.Defaults, error) {
	defaults := plugins.Defaults{}
	for name, value := range coreDefaults {
		defaults.Register(name, value)
	}
	if err := r.registry.RegisterSiteSettings(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

// RegisterSiteDefaults stores site defaults that do not exist yet.
func (r *ConfigResolver) RegisterSiteDefaults(ctx context.Context) (int, error) {
	defaults, err := r.SiteDefaults(ctx)
	if err != nil {
		return 0, err
	}
	added, err := r.settings.RegisterSiteDefaults(ctx, defaults)
	if err != nil {
		return 0, fmt.Errorf("register site defaults: %w", err)
	}
	return added, nil
}

// SettingsForm describes every course level control: the core ones followed by each
// installed plugin's fields in registration order.
func (r *ConfigResolver) SettingsForm(ctx context.Context) (*plugins.Form, error) {
	form := &plugins.Form{}
	for _, f := range coreFields() {
		form.AddField(f)
	}
	if err := r.registry.RenderSettingsFields(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func coreFields() []plugins.FormField {
	return []plugins.FormField{
		{Name: models.SettingEnable, Label: "Enable recompletion", Type: plugins.FieldCheckbox, Default: "0", Group: "general"},
		{
			Name:  models.SettingRecompletionType,
			Label: "Recompletion type",
			Type:  plugins.FieldSelect,
			Options: []plugins.FieldOption{
				{Value: string(models.RecompletionPeriod), Label: "Period"},
				{Value: string(models.RecompletionSchedule), Label: "Schedule"},
				{Value: string(models.RecompletionOnDemand), Label: "On demand"},
			},
			Default: string(models.RecompletionPeriod),
			Group:   "general",
		},
		{Name: models.SettingRecompletionDuration, Label: "Recompletion period", Type: plugins.FieldDuration, Default: "0", Group: "general", Help: "Seconds after completion before the course is reset"},
		{Name: models.SettingRecompletionSchedule, Label: "Recompletion schedule", Type: plugins.FieldText, Group: "general", Help: `For example "Jan 1", "every friday" or a cron line`},
		{Name: models.SettingDeleteGradeData, Label: "Delete all grades for the user", Type: plugins.FieldCheckbox, Default: "1", Group: "general"},
		{Name: models.SettingArchiveCompletionData, Label: "Archive completion data", Type: plugins.FieldCheckbox, Default: "1", Group: "general"},
		{Name: models.SettingUnenrolEnable, Label: "Reset on unenrolment", Type: plugins.FieldCheckbox, Default: "0", Group: "general"},
		{Name: models.SettingRestrictEnrol, Label: "Only reset users enrolled by", Type: plugins.FieldText, Group: "general", Help: "Comma separated enrolment methods"},
		{Name: models.SettingEmailEnable, Label: "Send recompletion message", Type: plugins.FieldCheckbox, Default: "1", Group: "email"},
		{Name: models.SettingEmailSubject, Label: "Recompletion message subject", Type: plugins.FieldText, Group: "email"},
		{Name: models.SettingEmailBody, Label: "Recompletion message body", Type: plugins.FieldTextarea, Group: "email", Help: "Placeholders: {$a->coursename} {$a->profileurl} {$a->link} {$a->fullname} {$a->email}"},
	}
}

// SaveCourseSettings validates overrides against the settings form and stores them. A schedule
// is stored with its next reset time; text that does not resolve to a future time is rejected.
// An empty checkbox, select or duration removes the override so the site default applies again.
func (r *ConfigResolver) SaveCourseSettings(ctx context.Context, courseID uint, values map[string]string) error {
	op := r.logger.WithOperation(ctx, "save_course_settings", access.ActorFrom(ctx))

	form, err := r.SettingsForm(ctx)
	if err != nil {
		op.LogResult(courseID, err)
		return err
	}

	clean := make(map[string]string, len(values)+1)
	var inherit []string
	var verrs ValidationErrors
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := strings.TrimSpace(values[name])
		field, ok := form.Field(name)
		if !ok {
			verrs = append(verrs, *NewValidationError(name, "is not a recompletion setting", value))
			continue
		}
		if value == "" && field.Type != plugins.FieldText && field.Type != plugins.FieldTextarea {
			inherit = append(inherit, name)
			continue
		}
		if msg := validateField(field, value); msg != "" {
			verrs = append(verrs, *NewValidationError(name, msg, value))
			continue
		}
		clean[name] = value
	}

	if text, ok := clean[models.SettingRecompletionSchedule]; ok {
		switch {
		case text == "":
			clean[models.SettingNextResetTime] = "0"
		default:
			next := ParseSchedule(text, r.now())
			if next == 0 {
				verrs = append(verrs, *NewValidationError(models.SettingRecompletionSchedule, ErrInvalidSchedule.Error(), text))
			} else {
				clean[models.SettingNextResetTime] = strconv.FormatInt(next, 10)
			}
		}
	}

	if len(verrs) == 0 && clean[models.SettingRecompletionType] == string(models.RecompletionSchedule) {
		current, err := r.Resolve(ctx, courseID)
		if err != nil {
			op.LogResult(courseID, err)
			return err
		}
		if _, ok := clean[models.SettingRecompletionSchedule]; !ok && current.Schedule == "" {
			verrs = append(verrs, *NewValidationError(models.SettingRecompletionSchedule, "is required for a scheduled recompletion", ""))
		}
	}

	if len(verrs) > 0 {
		op.LogResult(courseID, verrs)
		return verrs
	}

	if err := r.settings.SaveCourseSettings(ctx, courseID, clean); err != nil {
		op.LogResult(courseID, err)
		return fmt.Errorf("save course %d settings: %w", courseID, err)
	}
	for _, name := range inherit {
		if err := r.settings.DeleteCourseSetting(ctx, courseID, name); err != nil {
			op.LogResult(courseID, err)
			return fmt.Errorf("clear course %d setting %s: %w", courseID, name, err)
		}
	}
	op.With(slog.Int("saved", len(clean)), slog.Int("inherited", len(inherit))).LogResult(courseID, nil)
	return nil
}

// SaveSiteSettings stores site-wide defaults. Names follow the course form, plus the site-only
// completion switch; schedules are per course and rejected here.
func (r *ConfigResolver) SaveSiteSettings(ctx context.Context, values map[string]string) error {
	op := r.logger.WithOperation(ctx, "save_site_settings", access.ActorFrom(ctx))

	form, err := r.SettingsForm(ctx)
	if err != nil {
		op.LogResult(0, err)
		return err
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var verrs ValidationErrors
	for _, name := range names {
		value := strings.TrimSpace(values[name])
		field, ok := form.Field(name)
		switch {
		case name == models.SiteSettingEnableCompletion:
			field = plugins.FormField{Name: name, Type: plugins.FieldCheckbox}
		case name == models.SettingRecompletionSchedule:
			verrs = append(verrs, *NewValidationError(name, "is set per course", value))
			continue
		case !ok:
			verrs = append(verrs, *NewValidationError(name, "is not a recompletion setting", value))
			continue
		}
		if msg := validateField(field, value); msg != "" {
			verrs = append(verrs, *NewValidationError(name, msg, value))
		}
	}
	if len(verrs) > 0 {
		op.LogResult(0, verrs)
		return verrs
	}

	for _, name := range names {
		if err := r.settings.SetSiteSetting(ctx, name, strings.TrimSpace(values[name])); err != nil {
			op.LogResult(0, err)
			return fmt.Errorf("save site setting %s: %w", name, err)
		}
	}
	op.With(slog.Int("saved", len(names))).LogResult(0, nil)
	return nil
}

func validateField(field plugins.FormField, value string) string {
	switch field.Type {
	case plugins.FieldCheckbox:
		if value != "0" && value != "1" {
			return "must be 0 or 1"
		}
	case plugins.FieldSelect:
		for _, opt := range field.Options {
			if opt.Value == value {
				return ""
			}
		}
		values := make([]string, 0, len(field.Options))
		for _, opt := range field.Options {
			values = append(values, opt.Value)
		}
		return "must be one of: " + strings.Join(values, ", ")
	case plugins.FieldDuration:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return "must be a non-negative number of seconds"
		}
	}
	return ""
}
