package models

type Scorm struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (Scorm) TableName() string {
	return "scorm"
}

type ScormTrackFields struct {
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	ScormID      uint   `json:"scorm_id" gorm:"not null;index"`
	ScoID        uint   `json:"sco_id" gorm:"not null"`
	Attempt      int    `json:"attempt" gorm:"not null;default:1"`
	Element      string `json:"element" gorm:"not null;size:255"`
	Value        string `json:"value" gorm:"type:text"`
	TimeModified int64  `json:"time_modified" gorm:"default:0"`
}

type ScormTrack struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ScormTrackFields
}

func (ScormTrack) TableName() string {
	return "scorm_scoes_track"
}

type ArchivedScormTrack struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ScormTrackFields
	CourseID uint `json:"course_id" gorm:"not null;index"`
}

func (ArchivedScormTrack) TableName() string {
	return "recompletion_sst"
}
