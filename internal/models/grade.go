package models

type GradeItem struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	CourseID     uint   `json:"course_id" gorm:"not null;index"`
	ItemName     string `json:"item_name" gorm:"size:255"`
	ItemType     string `json:"item_type" gorm:"not null;size:30"` // course, mod, manual
	ItemModule   string `json:"item_module" gorm:"size:30"`
	ItemInstance *uint  `json:"item_instance"`
}

func (GradeItem) TableName() string {
	return "grade_items"
}

type Grade struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	ItemID       uint     `json:"item_id" gorm:"not null;index"`
	UserID       uint     `json:"user_id" gorm:"not null;index"`
	RawGrade     *float64 `json:"raw_grade"`
	FinalGrade   *float64 `json:"final_grade"`
	Feedback     string   `json:"feedback" gorm:"type:text"`
	TimeModified int64    `json:"time_modified" gorm:"default:0"`
}

func (Grade) TableName() string {
	return "grade_grades"
}

const (
	GradeHistoryInsert = "insert"
	GradeHistoryUpdate = "update"
	GradeHistoryDelete = "delete"
)

// GradeHistory is the host's grade audit trail, written on every grade change.
type GradeHistory struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Action       string   `json:"action" gorm:"not null;size:10"`
	OldID        uint     `json:"old_id" gorm:"not null;index"`
	Source       string   `json:"source" gorm:"size:255"`
	ItemID       uint     `json:"item_id" gorm:"not null;index"`
	UserID       uint     `json:"user_id" gorm:"not null;index"`
	RawGrade     *float64 `json:"raw_grade"`
	FinalGrade   *float64 `json:"final_grade"`
	LoggedUser   uint     `json:"logged_user"`
	TimeModified int64    `json:"time_modified"`
}

func (GradeHistory) TableName() string {
	return "grade_grades_history"
}
