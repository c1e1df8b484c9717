package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of recompletion events
type EventType string

const (
	EventCompletionReset      EventType = "completion_reset"
	EventAssignAttemptGranted EventType = "assign_attempt_granted"
	EventUserUnenrolled       EventType = "user_enrolment_deleted"
)

const (
	eventSource  = "recompletion-service"
	eventVersion = "1.0"
)

// Event is the envelope for every event this service emits
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// CompletionResetEvent tells downstream consumers a learner's course completion was wiped.
type CompletionResetEvent struct {
	CourseID  uint   `json:"course_id"`
	UserID    uint   `json:"user_id"`
	ObjectID  uint   `json:"object_id"`
	ContextID uint   `json:"context_id"`
	Trigger   string `json:"trigger"`
}

type AssignAttemptGrantedEvent struct {
	CourseID uint `json:"course_id"`
	UserID   uint `json:"user_id"`
	AssignID uint `json:"assign_id"`
}

// UnenrolEvent is consumed from the host when a user enrolment is removed.
type UnenrolEvent struct {
	UserID   uint `json:"user_id"`
	CourseID uint `json:"course_id"`
	EnrolID  uint `json:"enrol_id"`
}

func NewCompletionResetEvent(courseID, userID, objectID uint, trigger string) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      EventCompletionReset,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: CompletionResetEvent{
			CourseID:  courseID,
			UserID:    userID,
			ObjectID:  objectID,
			ContextID: courseID,
			Trigger:   trigger,
		},
	}
}

func NewAssignAttemptGrantedEvent(courseID, userID, assignID uint) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      EventAssignAttemptGranted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: AssignAttemptGrantedEvent{
			CourseID: courseID,
			UserID:   userID,
			AssignID: assignID,
		},
	}
}

func GenerateEventID() string {
	return uuid.NewString()
}
