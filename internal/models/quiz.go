package models

type Quiz struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	CourseID uint    `json:"course_id" gorm:"not null;index"`
	Name     string  `json:"name" gorm:"not null;size:255"`
	Attempts int     `json:"attempts" gorm:"not null;default:0"` // 0 means unlimited
	Grade    float64 `json:"grade" gorm:"default:10"`
}

func (Quiz) TableName() string {
	return "quiz"
}

type QuizAttemptFields struct {
	QuizID       uint     `json:"quiz_id" gorm:"not null;index"`
	UserID       uint     `json:"user_id" gorm:"not null;index"`
	Attempt      int      `json:"attempt" gorm:"not null"`
	UniqueID     uint     `json:"unique_id" gorm:"not null;default:0"`
	Layout       string   `json:"layout" gorm:"type:text"`
	CurrentPage  int      `json:"current_page" gorm:"default:0"`
	Preview      bool     `json:"preview" gorm:"default:false"`
	State        string   `json:"state" gorm:"size:16;default:inprogress"`
	TimeStart    int64    `json:"time_start" gorm:"default:0"`
	TimeFinish   int64    `json:"time_finish" gorm:"default:0"`
	TimeModified int64    `json:"time_modified" gorm:"default:0"`
	SumGrades    *float64 `json:"sum_grades"`
}

type QuizAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	QuizAttemptFields
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

type ArchivedQuizAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	QuizAttemptFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedQuizAttempt) TableName() string {
	return "recompletion_qa"
}

type QuizGradeFields struct {
	QuizID       uint    `json:"quiz_id" gorm:"not null;index"`
	UserID       uint    `json:"user_id" gorm:"not null;index"`
	Grade        float64 `json:"grade" gorm:"not null;default:0"`
	TimeModified int64   `json:"time_modified" gorm:"default:0"`
}

type QuizGrade struct {
	ID uint `json:"id" gorm:"primaryKey"`
	QuizGradeFields
}

func (QuizGrade) TableName() string {
	return "quiz_grades"
}

type ArchivedQuizGrade struct {
	ID uint `json:"id" gorm:"primaryKey"`
	QuizGradeFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedQuizGrade) TableName() string {
	return "recompletion_qg"
}

// QuizOverride lets one user deviate from the quiz settings, here used for the attempt limit.
type QuizOverride struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;index"`
	UserID    *uint  `json:"user_id" gorm:"index"`
	GroupID   *uint  `json:"group_id"`
	TimeOpen  *int64 `json:"time_open"`
	TimeClose *int64 `json:"time_close"`
	TimeLimit *int64 `json:"time_limit"`
	Attempts  *int   `json:"attempts"`
	Password  string `json:"password" gorm:"size:255"`
}

func (QuizOverride) TableName() string {
	return "quiz_overrides"
}
