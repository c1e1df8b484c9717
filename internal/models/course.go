package models

// Course is the host course row. The recompletion service only reads it.
type Course struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	FullName         string `json:"full_name" gorm:"not null;size:254"`
	ShortName        string `json:"short_name" gorm:"size:255;index"`
	EnableCompletion bool   `json:"enable_completion" gorm:"not null"`
	Visible          bool   `json:"visible" gorm:"default:true"`
}

func (Course) TableName() string {
	return "courses"
}

// Module lists the activity types installed on the host.
type Module struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null;size:20;uniqueIndex"`
	Visible bool   `json:"visible" gorm:"default:true"`
}

func (Module) TableName() string {
	return "modules"
}

// CourseModule places one activity instance inside a course.
type CourseModule struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	CourseID uint `json:"course_id" gorm:"not null;index"`
	ModuleID uint `json:"module_id" gorm:"not null;index"`
	Instance uint `json:"instance" gorm:"not null"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
