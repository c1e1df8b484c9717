package models

type HotPot struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (HotPot) TableName() string {
	return "hotpot"
}

type HotPotAttemptFields struct {
	HotPotID     uint  `json:"hotpot_id" gorm:"column:hotpot_id;not null;index"`
	UserID       uint  `json:"user_id" gorm:"not null;index"`
	Attempt      int   `json:"attempt" gorm:"not null;default:1"`
	Score        int   `json:"score" gorm:"default:0"`
	Penalties    int   `json:"penalties" gorm:"default:0"`
	Status       int   `json:"status" gorm:"default:1"`
	TimeStart    int64 `json:"time_start" gorm:"default:0"`
	TimeFinish   int64 `json:"time_finish" gorm:"default:0"`
	Duration     int64 `json:"duration" gorm:"default:0"`
	TimeModified int64 `json:"time_modified" gorm:"default:0"`
}

type HotPotAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	HotPotAttemptFields
}

func (HotPotAttempt) TableName() string {
	return "hotpot_attempts"
}

type ArchivedHotPotAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	HotPotAttemptFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedHotPotAttempt) TableName() string {
	return "recompletion_hpa"
}
