package models

type LTI struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (LTI) TableName() string {
	return "lti"
}

type LTISubmissionFields struct {
	LTIID         uint    `json:"lti_id" gorm:"column:lti_id;not null;index"`
	UserID        uint    `json:"user_id" gorm:"not null;index"`
	DateSubmitted int64   `json:"date_submitted" gorm:"default:0"`
	DateUpdated   int64   `json:"date_updated" gorm:"default:0"`
	GradePercent  float64 `json:"grade_percent" gorm:"default:0"`
	OriginalGrade float64 `json:"original_grade" gorm:"default:0"`
	LaunchID      uint    `json:"launch_id" gorm:"default:0"`
	State         int     `json:"state" gorm:"default:0"`
}

type LTISubmission struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LTISubmissionFields
}

func (LTISubmission) TableName() string {
	return "lti_submission"
}

type ArchivedLTISubmission struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LTISubmissionFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedLTISubmission) TableName() string {
	return "recompletion_ltis"
}
