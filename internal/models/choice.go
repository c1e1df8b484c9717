package models

type Choice struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (Choice) TableName() string {
	return "choice"
}

type ChoiceAnswerFields struct {
	ChoiceID     uint  `json:"choice_id" gorm:"not null;index"`
	UserID       uint  `json:"user_id" gorm:"not null;index"`
	OptionID     uint  `json:"option_id" gorm:"not null"`
	TimeModified int64 `json:"time_modified" gorm:"default:0"`
}

type ChoiceAnswer struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ChoiceAnswerFields
}

func (ChoiceAnswer) TableName() string {
	return "choice_answers"
}

type ArchivedChoiceAnswer struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ChoiceAnswerFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedChoiceAnswer) TableName() string {
	return "recompletion_cha"
}
