package models

const (
	SubmissionStatusNew       = "new"
	SubmissionStatusDraft     = "draft"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusReopened  = "reopened"
)

type Assign struct {
	ID                  uint   `json:"id" gorm:"primaryKey"`
	CourseID            uint   `json:"course_id" gorm:"not null;index"`
	Name                string `json:"name" gorm:"not null;size:255"`
	MaxAttempts         int    `json:"max_attempts" gorm:"not null;default:-1"` // -1 means unlimited
	AttemptReopenMethod string `json:"attempt_reopen_method" gorm:"size:10;default:none"`
}

func (Assign) TableName() string {
	return "assign"
}

// Limited reports whether the assignment caps the number of attempts.
func (a Assign) Limited() bool {
	return a.MaxAttempts > 0
}

type AssignSubmissionFields struct {
	AssignID      uint   `json:"assign_id" gorm:"not null;index"`
	UserID        uint   `json:"user_id" gorm:"not null;index"`
	TimeCreated   int64  `json:"time_created" gorm:"default:0"`
	TimeModified  int64  `json:"time_modified" gorm:"default:0"`
	Status        string `json:"status" gorm:"size:10"`
	AttemptNumber int    `json:"attempt_number" gorm:"not null;default:0"`
	Latest        bool   `json:"latest" gorm:"default:false"`
}

type AssignSubmission struct {
	ID uint `json:"id" gorm:"primaryKey"`
	AssignSubmissionFields
}

func (AssignSubmission) TableName() string {
	return "assign_submission"
}

type ArchivedAssignSubmission struct {
	ID uint `json:"id" gorm:"primaryKey"`
	AssignSubmissionFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedAssignSubmission) TableName() string {
	return "recompletion_asub"
}

type AssignGradeFields struct {
	AssignID      uint    `json:"assign_id" gorm:"not null;index"`
	UserID        uint    `json:"user_id" gorm:"not null;index"`
	TimeCreated   int64   `json:"time_created" gorm:"default:0"`
	TimeModified  int64   `json:"time_modified" gorm:"default:0"`
	Grader        uint    `json:"grader" gorm:"default:0"`
	Grade         float64 `json:"grade" gorm:"default:0"`
	AttemptNumber int     `json:"attempt_number" gorm:"not null;default:0"`
}

type AssignGrade struct {
	ID uint `json:"id" gorm:"primaryKey"`
	AssignGradeFields
}

func (AssignGrade) TableName() string {
	return "assign_grades"
}

type ArchivedAssignGrade struct {
	ID uint `json:"id" gorm:"primaryKey"`
	AssignGradeFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedAssignGrade) TableName() string {
	return "recompletion_ag"
}
