package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting names persisted per course in recompletion_config.
const (
	SettingEnable                = "enable"
	SettingRecompletionType      = "recompletiontype"
	SettingRecompletionDuration  = "recompletionduration"
	SettingRecompletionSchedule  = "recompletionschedule"
	SettingNextResetTime         = "nextresettime"
	SettingDeleteGradeData       = "deletegradedata"
	SettingArchiveCompletionData = "archivecompletiondata"
	SettingEmailEnable           = "recompletionemailenable"
	SettingEmailSubject          = "recompletionemailsubject"
	SettingEmailBody             = "recompletionemailbody"
	SettingAssignEvent           = "assignevent"
	SettingUnenrolEnable         = "recompletionunenrolenable"
	SettingRestrictEnrol         = "restrictenrol"

	// ArchiveSettingPrefix is prepended to an activity type name to form its archive flag.
	ArchiveSettingPrefix = "archive"
)

// SiteSettingEnableCompletion switches completion tracking for the whole site. Absent means on.
const SiteSettingEnableCompletion = "enablecompletion"

// ArchiveSettingName returns the archive flag name of an activity type, e.g. "archivequiz".
func ArchiveSettingName(activity string) string {
	return ArchiveSettingPrefix + activity
}

// CourseSetting is one (course, name, value) override row.
type CourseSetting struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_recompletion_course_name"`
	Name     string `json:"name" gorm:"not null;size:100;uniqueIndex:idx_recompletion_course_name"`
	Value    string `json:"value" gorm:"type:text"`
}

func (CourseSetting) TableName() string {
	return "recompletion_config"
}

// SiteSetting is a site-wide default for a course setting of the same name.
type SiteSetting struct {
	Name  string `json:"name" gorm:"primaryKey;size:100"`
	Value string `json:"value" gorm:"type:text"`
}

func (SiteSetting) TableName() string {
	return "recompletion_site_settings"
}

type ResetTrigger string

const (
	TriggerSweep    ResetTrigger = "sweep"
	TriggerSchedule ResetTrigger = "schedule"
	TriggerOnDemand ResetTrigger = "ondemand"
	TriggerUnenrol  ResetTrigger = "unenrol"
)

// RecompletionAuditLog records every finished reset.
type RecompletionAuditLog struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	CourseID uint           `json:"course_id" gorm:"not null;index"`
	UserID   uint           `json:"user_id" gorm:"not null;index"`
	ActorID  uint           `json:"actor_id" gorm:"not null;default:0"`
	Trigger  ResetTrigger   `json:"trigger" gorm:"not null;size:20"`
	Warnings datatypes.JSON `json:"warnings"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (RecompletionAuditLog) TableName() string {
	return "recompletion_audit_log"
}
