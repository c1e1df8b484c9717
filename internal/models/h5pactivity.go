package models

type H5PActivity struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (H5PActivity) TableName() string {
	return "h5pactivity"
}

type H5PAttemptFields struct {
	H5PActivityID uint    `json:"h5pactivity_id" gorm:"column:h5pactivity_id;not null;index"`
	UserID        uint    `json:"user_id" gorm:"not null;index"`
	Attempt       int     `json:"attempt" gorm:"not null;default:1"`
	RawScore      int64   `json:"raw_score" gorm:"default:0"`
	MaxScore      int64   `json:"max_score" gorm:"default:0"`
	Scaled        float64 `json:"scaled" gorm:"default:0"`
	Duration      int64   `json:"duration" gorm:"default:0"`
	Completion    *int    `json:"completion"`
	Success       *int    `json:"success"`
	TimeCreated   int64   `json:"time_created" gorm:"default:0"`
	TimeModified  int64   `json:"time_modified" gorm:"default:0"`
}

type H5PAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	H5PAttemptFields
}

func (H5PAttempt) TableName() string {
	return "h5pactivity_attempts"
}

type ArchivedH5PAttempt struct {
	ID uint `json:"id" gorm:"primaryKey"`
	H5PAttemptFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedH5PAttempt) TableName() string {
	return "recompletion_h5p"
}

type H5PAttemptResultFields struct {
	SubContent      string `json:"sub_content" gorm:"size:128"`
	TimeCreated     int64  `json:"time_created" gorm:"default:0"`
	InteractionType string `json:"interaction_type" gorm:"size:128"`
	Description     string `json:"description" gorm:"type:text"`
	CorrectPattern  string `json:"correct_pattern" gorm:"type:text"`
	Response        string `json:"response" gorm:"type:text"`
	RawScore        int64  `json:"raw_score" gorm:"default:0"`
	MaxScore        int64  `json:"max_score" gorm:"default:0"`
	Completion      *int   `json:"completion"`
	Success         *int   `json:"success"`
}

// H5PAttemptResult is a child row of H5PAttempt.
type H5PAttemptResult struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AttemptID uint `json:"attempt_id" gorm:"not null;index"`
	H5PAttemptResultFields
}

func (H5PAttemptResult) TableName() string {
	return "h5pactivity_attempts_results"
}

// ArchivedH5PAttemptResult points at its ArchivedH5PAttempt, never at the live attempt id.
type ArchivedH5PAttemptResult struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AttemptID uint `json:"attempt_id" gorm:"not null;index"`
	H5PAttemptResultFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedH5PAttemptResult) TableName() string {
	return "recompletion_h5pr"
}
