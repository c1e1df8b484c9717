package models

// CourseCompletionFields holds every column copied verbatim into the archive.
type CourseCompletionFields struct {
	UserID        uint  `json:"user_id" gorm:"not null;index"`
	CourseID      uint  `json:"course_id" gorm:"not null;index"`
	TimeEnrolled  int64 `json:"time_enrolled" gorm:"not null;default:0"`
	TimeStarted   int64 `json:"time_started" gorm:"not null;default:0"`
	TimeCompleted int64 `json:"time_completed" gorm:"default:0;index"`
	Reaggregate   int64 `json:"reaggregate" gorm:"not null;default:0"`
}

type CourseCompletion struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CourseCompletionFields
}

func (CourseCompletion) TableName() string {
	return "course_completions"
}

type ArchivedCourseCompletion struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CourseCompletionFields
}

func (ArchivedCourseCompletion) TableName() string {
	return "recompletion_cc"
}

type CriteriaCompletionFields struct {
	UserID        uint     `json:"user_id" gorm:"not null;index"`
	CourseID      uint     `json:"course_id" gorm:"not null;index"`
	CriteriaID    uint     `json:"criteria_id" gorm:"not null"`
	GradeFinal    *float64 `json:"grade_final"`
	Unenroled     int64    `json:"unenroled" gorm:"default:0"`
	TimeCompleted int64    `json:"time_completed" gorm:"default:0"`
}

type CriteriaCompletion struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CriteriaCompletionFields
}

func (CriteriaCompletion) TableName() string {
	return "course_completion_crit_compl"
}

type ArchivedCriteriaCompletion struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CriteriaCompletionFields
}

func (ArchivedCriteriaCompletion) TableName() string {
	return "recompletion_cc_cc"
}

type ModuleCompletionFields struct {
	CourseModuleID  uint  `json:"course_module_id" gorm:"not null;index"`
	UserID          uint  `json:"user_id" gorm:"not null;index"`
	CompletionState int   `json:"completion_state" gorm:"not null;default:0"`
	Viewed          bool  `json:"viewed" gorm:"default:false"`
	OverrideBy      *uint `json:"override_by"`
	TimeModified    int64 `json:"time_modified" gorm:"not null;default:0"`
}

type ModuleCompletion struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ModuleCompletionFields
}

func (ModuleCompletion) TableName() string {
	return "course_modules_completion"
}

// ArchivedModuleCompletion carries the course id because the live row only knows its course module.
type ArchivedModuleCompletion struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ModuleCompletionFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedModuleCompletion) TableName() string {
	return "recompletion_cmc"
}
