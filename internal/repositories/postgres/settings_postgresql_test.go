package postgres

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsPostgreSQL_SaveCourseSettingsUpserts(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewSettingsPostgreSQL(db)

	require.NoError(t, repo.SaveCourseSettings(ctx, 7, map[string]string{
		models.SettingEnable:               "1",
		models.SettingRecompletionDuration: "3600",
	}))
	require.NoError(t, repo.SaveCourseSettings(ctx, 7, map[string]string{
		models.SettingRecompletionDuration: "7200",
	}))

	values, err := repo.GetCourseSettings(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		models.SettingEnable:               "1",
		models.SettingRecompletionDuration: "7200",
	}, values)
	assert.Equal(t, int64(2), testutil.Count(t, db, &models.CourseSetting{}, "course_id = ?", 7))

	ids, err := repo.CoursesWithSetting(ctx, models.SettingEnable, "1")
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)

	require.NoError(t, repo.DeleteCourseSetting(ctx, 7, models.SettingEnable))
	ids, err = repo.CoursesWithSetting(ctx, models.SettingEnable, "1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSettingsPostgreSQL_RegisterSiteDefaultsNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewSettingsPostgreSQL(db)

	require.NoError(t, repo.SetSiteSetting(ctx, "quiz", "2"))

	inserted, err := repo.RegisterSiteDefaults(ctx, map[string]string{
		"quiz":        "0",
		"archivequiz": "1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	values, err := repo.GetSiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", values["quiz"])
	assert.Equal(t, "1", values["archivequiz"])
}
