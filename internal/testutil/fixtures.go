package testutil

import (
	"fmt"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"gorm.io/gorm"
)

func create(tb testing.TB, db *gorm.DB, what string, value interface{}) {
	tb.Helper()
	if err := db.Create(value).Error; err != nil {
		tb.Fatalf("seed %s: %v", what, err)
	}
}

func SeedCourse(tb testing.TB, db *gorm.DB, name string) *models.Course {
	tb.Helper()
	c := &models.Course{FullName: name, ShortName: name, EnableCompletion: true, Visible: true}
	create(tb, db, "course", c)
	return c
}

func SeedUser(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u := &models.User{
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     username + "@example.com",
		IsActive:  true,
	}
	create(tb, db, "user", u)
	return u
}

// SeedModules marks the named activity types as installed.
func SeedModules(tb testing.TB, db *gorm.DB, names ...string) {
	tb.Helper()
	for _, name := range names {
		create(tb, db, "module", &models.Module{Name: name, Visible: true})
	}
}

func SeedCapability(tb testing.TB, db *gorm.DB, userID, courseID uint, capability string) {
	tb.Helper()
	create(tb, db, "capability", &models.UserCapability{UserID: userID, CourseID: courseID, Capability: capability})
}

// SeedEnrolment creates an enrolment instance of the given method and enrols the user through it.
func SeedEnrolment(tb testing.TB, db *gorm.DB, courseID, userID uint, method string) *models.UserEnrolment {
	tb.Helper()
	instance := &models.EnrolInstance{CourseID: courseID, Enrol: method, Status: models.EnrolStatusEnabled}
	create(tb, db, "enrol instance", instance)
	ue := &models.UserEnrolment{EnrolID: instance.ID, UserID: userID, Status: models.UserEnrolActive}
	create(tb, db, "user enrolment", ue)
	return ue
}

// SeedCompletion creates a course completion row plus one criteria and one module completion.
func SeedCompletion(tb testing.TB, db *gorm.DB, courseID, userID uint, timeCompleted int64) *models.CourseCompletion {
	tb.Helper()
	cc := &models.CourseCompletion{CourseCompletionFields: models.CourseCompletionFields{
		UserID:        userID,
		CourseID:      courseID,
		TimeEnrolled:  timeCompleted - 86400,
		TimeStarted:   timeCompleted - 3600,
		TimeCompleted: timeCompleted,
	}}
	create(tb, db, "course completion", cc)

	grade := 8.5
	create(tb, db, "criteria completion", &models.CriteriaCompletion{CriteriaCompletionFields: models.CriteriaCompletionFields{
		UserID:        userID,
		CourseID:      courseID,
		CriteriaID:    1,
		GradeFinal:    &grade,
		TimeCompleted: timeCompleted,
	}})

	cm := &models.CourseModule{CourseID: courseID, ModuleID: 1, Instance: 1}
	create(tb, db, "course module", cm)
	create(tb, db, "module completion", &models.ModuleCompletion{ModuleCompletionFields: models.ModuleCompletionFields{
		CourseModuleID:  cm.ID,
		UserID:          userID,
		CompletionState: 1,
		Viewed:          true,
		TimeModified:    timeCompleted,
	}})
	return cc
}

// SeedSettings writes course override rows.
func SeedSettings(tb testing.TB, db *gorm.DB, courseID uint, settings map[string]string) {
	tb.Helper()
	for name, value := range settings {
		create(tb, db, fmt.Sprintf("setting %s", name), &models.CourseSetting{CourseID: courseID, Name: name, Value: value})
	}
}

func SeedGrade(tb testing.TB, db *gorm.DB, courseID, userID uint, final float64) (*models.GradeItem, *models.Grade) {
	tb.Helper()
	item := &models.GradeItem{CourseID: courseID, ItemName: "Course total", ItemType: "course"}
	create(tb, db, "grade item", item)
	g := &models.Grade{ItemID: item.ID, UserID: userID, RawGrade: &final, FinalGrade: &final}
	create(tb, db, "grade", g)
	return item, g
}

func Count(tb testing.TB, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	tb.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}
