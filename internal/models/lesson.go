package models

type Lesson struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (Lesson) TableName() string {
	return "lesson"
}

type LessonAttemptFields struct {
	LessonID   uint   `json:"lesson_id" gorm:"not null;index"`
	PageID     uint   `json:"page_id" gorm:"not null"`
	UserID     uint   `json:"user_id" gorm:"not null;index"`
	AnswerID   uint   `json:"answer_id" gorm:"not null;default:0"`
	Retry      int    `json:"retry" gorm:"not null;default:0"`
	Correct    bool   `json:"correct" gorm:"default:false"`
	UserAnswer string `json:"user_answer" gorm:"type:text"`
	TimeSeen   int64  `json:"time_seen" gorm:"default:0"`
}

type LessonAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LessonAttemptFields
}

func (LessonAttempt) TableName() string {
	return "lesson_attempts"
}

type ArchivedLessonAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LessonAttemptFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedLessonAttempt) TableName() string {
	return "recompletion_la"
}

type LessonGradeFields struct {
	LessonID  uint    `json:"lesson_id" gorm:"not null;index"`
	UserID    uint    `json:"user_id" gorm:"not null;index"`
	Grade     float64 `json:"grade" gorm:"default:0"`
	Late      bool    `json:"late" gorm:"default:false"`
	Completed int64   `json:"completed" gorm:"default:0"`
}

type LessonGrade struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LessonGradeFields
}

func (LessonGrade) TableName() string {
	return "lesson_grades"
}

type ArchivedLessonGrade struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LessonGradeFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedLessonGrade) TableName() string {
	return "recompletion_lg"
}

type LessonTimerFields struct {
	LessonID   uint  `json:"lesson_id" gorm:"not null;index"`
	UserID     uint  `json:"user_id" gorm:"not null;index"`
	StartTime  int64 `json:"start_time" gorm:"default:0"`
	LessonTime int64 `json:"lesson_time" gorm:"default:0"`
	Completed  bool  `json:"completed" gorm:"default:false"`
}

type LessonTimer struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LessonTimerFields
}

func (LessonTimer) TableName() string {
	return "lesson_timer"
}

type ArchivedLessonTimer struct {
	ID uint `json:"id" gorm:"primaryKey"`
	LessonTimerFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedLessonTimer) TableName() string {
	return "recompletion_lt"
}
