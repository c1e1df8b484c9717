package models

const (
	EnrolStatusEnabled  = 0
	EnrolStatusDisabled = 1

	UserEnrolActive    = 0
	UserEnrolSuspended = 1
)

// EnrolInstance is one enrolment method configured on a course (manual, self, cohort...).
type EnrolInstance struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Enrol    string `json:"enrol" gorm:"not null;size:20;index"`
	Status   int    `json:"status" gorm:"not null;default:0"`
}

func (EnrolInstance) TableName() string {
	return "enrol"
}

type UserEnrolment struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	EnrolID   uint  `json:"enrol_id" gorm:"not null;index"`
	UserID    uint  `json:"user_id" gorm:"not null;index"`
	Status    int   `json:"status" gorm:"not null;default:0"`
	TimeStart int64 `json:"time_start" gorm:"not null;default:0"`
	TimeEnd   int64 `json:"time_end" gorm:"not null;default:0"`
}

func (UserEnrolment) TableName() string {
	return "user_enrolments"
}

// ActiveAt reports whether the enrolment is usable at the given unix time.
func (ue UserEnrolment) ActiveAt(now int64) bool {
	if ue.Status != UserEnrolActive {
		return false
	}
	if ue.TimeStart > now {
		return false
	}
	return ue.TimeEnd == 0 || ue.TimeEnd > now
}
