package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/events"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnenrolHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		settings  map[string]string
		method    string
		wantReset bool
	}{
		{
			name:      "course resets on unenrol",
			settings:  map[string]string{models.SettingEnable: "1", models.SettingUnenrolEnable: "1"},
			method:    "manual",
			wantReset: true,
		},
		{
			name:     "unenrol reset turned off",
			settings: map[string]string{models.SettingEnable: "1"},
			method:   "manual",
		},
		{
			name:     "recompletion turned off",
			settings: map[string]string{models.SettingUnenrolEnable: "1"},
			method:   "manual",
		},
		{
			name:      "departing enrolment matches the restriction",
			settings:  map[string]string{models.SettingEnable: "1", models.SettingUnenrolEnable: "1", models.SettingRestrictEnrol: "self"},
			method:    "self",
			wantReset: true,
		},
		{
			name:     "departing enrolment outside the restriction",
			settings: map[string]string{models.SettingEnable: "1", models.SettingUnenrolEnable: "1", models.SettingRestrictEnrol: "self"},
			method:   "manual",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			handler := NewUnenrolHandler(h.engine, h.resolver, testutil.Logger())

			course := testutil.SeedCourse(t, h.db, "C")
			user := testutil.SeedUser(t, h.db, "u")
			ue := testutil.SeedEnrolment(t, h.db, course.ID, user.ID, tt.method)
			testutil.SeedCompletion(t, h.db, course.ID, user.ID, 5000)
			testutil.SeedSettings(t, h.db, course.ID, tt.settings)

			// the host removes the enrolment before announcing it
			require.NoError(t, h.db.Delete(&models.UserEnrolment{}, ue.ID).Error)

			err := handler.Handle(context.Background(), events.UnenrolEvent{UserID: user.ID, CourseID: course.ID, EnrolID: ue.EnrolID})
			require.NoError(t, err)

			remaining := testutil.Count(t, h.db, &models.CourseCompletion{}, "")
			reset := h.publisher.EventsOfType(events.EventCompletionReset)
			if tt.wantReset {
				assert.Zero(t, remaining)
				require.Len(t, reset, 1)
				assert.Equal(t, string(models.TriggerUnenrol), reset[0].Data.(events.CompletionResetEvent).Trigger)
				return
			}
			assert.Equal(t, int64(1), remaining)
			assert.Empty(t, reset)
		})
	}
}

func TestUnenrolHandler_UnknownCourseIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	handler := NewUnenrolHandler(h.engine, h.resolver, testutil.Logger())
	testutil.SeedSettings(t, h.db, 77, map[string]string{models.SettingEnable: "1", models.SettingUnenrolEnable: "1"})

	err := handler.Handle(context.Background(), events.UnenrolEvent{UserID: 1, CourseID: 77, EnrolID: 1})
	assert.NoError(t, err)
}

func TestUnenrolHandler_PersistenceFailureIsReturned(t *testing.T) {
	failUser := new(uint)
	h := newHarness(t, withFailingUser(failUser))
	handler := NewUnenrolHandler(h.engine, h.resolver, testutil.Logger())

	course := testutil.SeedCourse(t, h.db, "C")
	user := testutil.SeedUser(t, h.db, "u")
	*failUser = user.ID
	testutil.SeedSettings(t, h.db, course.ID, map[string]string{models.SettingEnable: "1", models.SettingUnenrolEnable: "1"})

	err := handler.Handle(context.Background(), events.UnenrolEvent{UserID: user.ID, CourseID: course.ID, EnrolID: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
