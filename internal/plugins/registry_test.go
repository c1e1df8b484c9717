package plugins

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	db := testutil.DB(t)
	deps, _ := testDeps(t, db)

	all, err := NewRegistry(nil, deps, nil)
	require.NoError(t, err)
	assert.Equal(t, SupportedActivities(), all.Names())

	some, err := NewRegistry([]string{"scorm", "quiz"}, deps, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"scorm", "quiz"}, some.Names())

	_, err = NewRegistry([]string{"forum"}, deps, nil)
	assert.Error(t, err)

	_, err = NewRegistry([]string{"quiz", "quiz"}, deps, nil)
	assert.Error(t, err)
}

func TestRegistry_InstalledFollowsHostModules(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	deps, _ := testDeps(t, db)
	testutil.SeedModules(t, db, "quiz", "assign", "forum")

	registry, err := NewRegistry(nil, deps, postgres.NewCoursePostgreSQL(db))
	require.NoError(t, err)

	installed, err := registry.Installed(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(installed))
	for _, p := range installed {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"quiz", "assign"}, names)

	form := &Form{}
	require.NoError(t, registry.RenderSettingsFields(ctx, form))
	_, hasQuiz := form.Field("quiz")
	_, hasScorm := form.Field("scorm")
	assert.True(t, hasQuiz)
	assert.False(t, hasScorm)

	quizField, _ := form.Field("quiz")
	assert.Len(t, quizField.Options, 3)
	archiveField, ok := form.Field(models.ArchiveSettingName("assign"))
	require.True(t, ok)
	assert.Equal(t, FieldCheckbox, archiveField.Type)
	_, hasEvent := form.Field(models.SettingAssignEvent)
	assert.True(t, hasEvent)

	defaults := Defaults{}
	require.NoError(t, registry.RegisterSiteSettings(ctx, defaults))
	assert.Equal(t, Defaults{
		"quiz":          "0",
		"archivequiz":   "1",
		"assign":        "0",
		"archiveassign": "1",
		"assignevent":   "0",
	}, defaults)
}

func TestPolicyField_DeleteOnlyTypes(t *testing.T) {
	field := PolicyField("scorm", "SCORM", deleteOnly)
	require.Len(t, field.Options, 2)
	assert.Equal(t, "0", field.Options[0].Value)
	assert.Equal(t, "1", field.Options[1].Value)
	assert.Equal(t, "0", field.Default)
}
