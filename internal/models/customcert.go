package models

type CustomCert struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (CustomCert) TableName() string {
	return "customcert"
}

type CustomCertIssueFields struct {
	CustomCertID uint   `json:"customcert_id" gorm:"column:customcert_id;not null;index"`
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	Code         string `json:"code" gorm:"size:40"`
	Emailed      bool   `json:"emailed" gorm:"default:false"`
	TimeCreated  int64  `json:"time_created" gorm:"default:0"`
}

type CustomCertIssue struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CustomCertIssueFields
}

func (CustomCertIssue) TableName() string {
	return "customcert_issues"
}

type ArchivedCustomCertIssue struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CustomCertIssueFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedCustomCertIssue) TableName() string {
	return "recompletion_ci"
}
