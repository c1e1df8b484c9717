package models

import "strconv"

// Policy decides what happens to an activity type's learner data on reset.
type Policy int

const (
	PolicyNothing      Policy = 0
	PolicyDelete       Policy = 1
	PolicyExtraAttempt Policy = 2
)

func (p Policy) String() string {
	switch p {
	case PolicyNothing:
		return "nothing"
	case PolicyDelete:
		return "delete"
	case PolicyExtraAttempt:
		return "extraattempt"
	default:
		return "unknown(" + strconv.Itoa(int(p)) + ")"
	}
}

type RecompletionType string

const (
	RecompletionPeriod   RecompletionType = "period"
	RecompletionSchedule RecompletionType = "schedule"
	RecompletionOnDemand RecompletionType = "ondemand"
)

// ActivityConfig is the resolved policy of one activity type.
type ActivityConfig struct {
	Policy  Policy `json:"policy"`
	Archive bool   `json:"archive"`
}

// EffectiveConfig is the typed snapshot of site defaults merged with course overrides.
// It is built once per run and must not be mutated afterwards.
type EffectiveConfig struct {
	CourseID uint `json:"course_id"`

	Enable        bool             `json:"enable"`
	Type          RecompletionType `json:"recompletion_type"`
	Duration      int64            `json:"recompletion_duration"`
	Schedule      string           `json:"recompletion_schedule"`
	NextResetTime int64            `json:"next_reset_time"`

	EmailEnable  bool   `json:"email_enable"`
	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`

	DeleteGradeData       bool `json:"delete_grade_data"`
	ArchiveCompletionData bool `json:"archive_completion_data"`
	AssignEvent           bool `json:"assign_event"`
	UnenrolEnable         bool `json:"unenrol_enable"`

	RestrictEnrol []string `json:"restrict_enrol"`

	Activities map[string]ActivityConfig `json:"activities"`
}

// Activity returns the configuration of one activity type; unknown types resolve to PolicyNothing.
func (c *EffectiveConfig) Activity(name string) ActivityConfig {
	if c == nil || c.Activities == nil {
		return ActivityConfig{Policy: PolicyNothing}
	}
	return c.Activities[name]
}

// HasRestriction reports whether an enrolment method allow list is configured.
func (c *EffectiveConfig) HasRestriction() bool {
	return c != nil && len(c.RestrictEnrol) > 0
}
