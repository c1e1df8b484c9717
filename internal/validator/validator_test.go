package validator

import (
	"testing"
	"time"

	apperrors "github.com/SAP-F-2025/recompletion-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleRequest struct {
	Schedule string `json:"schedule" validate:"required,max=255,schedule"`
}

type settingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,setting_name,endkeys,max=20"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()
	v.now = func() time.Time { return time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
		wantRules  []string
	}{
		{name: "valid schedule", input: scheduleRequest{Schedule: "every friday"}},
		{name: "cron schedule", input: scheduleRequest{Schedule: "0 3 * * 1"}},
		{name: "past schedule", input: scheduleRequest{Schedule: "yesterday"}, wantFields: []string{"schedule"}, wantRules: []string{"schedule"}},
		{name: "missing schedule", input: scheduleRequest{}, wantFields: []string{"schedule"}, wantRules: []string{"required"}},
		{name: "valid settings", input: settingsRequest{Settings: map[string]string{"quiz": "1", "archivequiz": "0"}}},
		{name: "empty settings", input: settingsRequest{Settings: map[string]string{}}, wantFields: []string{"settings"}, wantRules: []string{"min"}},
		{name: "bad setting name", input: settingsRequest{Settings: map[string]string{"Quiz!": "1"}}, wantRules: []string{"setting_name"}},
		{name: "value too long", input: settingsRequest{Settings: map[string]string{"recompletionemailsubject": "a subject that is far too long"}}, wantRules: []string{"max"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantRules == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var errs apperrors.ValidationErrors
			require.ErrorAs(t, err, &errs)
			rules := make([]string, 0, len(errs))
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				rules = append(rules, e.Rule)
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.wantRules, rules)
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
}
