package models

type Questionnaire struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (Questionnaire) TableName() string {
	return "questionnaire"
}

type QuestionnaireResponseFields struct {
	QuestionnaireID uint    `json:"questionnaire_id" gorm:"not null;index"`
	UserID          uint    `json:"user_id" gorm:"not null;index"`
	Complete        string  `json:"complete" gorm:"size:1;default:n"`
	Grade           float64 `json:"grade" gorm:"default:0"`
	Submitted       int64   `json:"submitted" gorm:"default:0"`
}

type QuestionnaireResponse struct {
	ID uint `json:"id" gorm:"primaryKey"`
	QuestionnaireResponseFields
}

func (QuestionnaireResponse) TableName() string {
	return "questionnaire_response"
}

type ArchivedQuestionnaireResponse struct {
	ID uint `json:"id" gorm:"primaryKey"`
	QuestionnaireResponseFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedQuestionnaireResponse) TableName() string {
	return "recompletion_qr"
}

type QuestionnaireResponseTextFields struct {
	QuestionID uint   `json:"question_id" gorm:"not null"`
	Response   string `json:"response" gorm:"type:text"`
}

type QuestionnaireResponseText struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ResponseID uint `json:"response_id" gorm:"not null;index"`
	QuestionnaireResponseTextFields
}

func (QuestionnaireResponseText) TableName() string {
	return "questionnaire_response_text"
}

type ArchivedQuestionnaireResponseText struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ResponseID uint `json:"response_id" gorm:"not null;index"`
	QuestionnaireResponseTextFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedQuestionnaireResponseText) TableName() string {
	return "recompletion_qrt"
}
