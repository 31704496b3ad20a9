package model

import (
	"time"

	"github.com/google/uuid"
)

// DueDateLayout is the wire format for task due dates in the per-user task file.
const DueDateLayout = "2006-01-02 15:04"

// Priority orders incomplete tasks within the same due window.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank maps a priority to its sort rank (High sorts first). Unknown values
// rank as Medium, matching how legacy records are read.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// Task represents a single item in a user's planner. ID is the stable
// identity; Name is unique within the owner's collection but may change on
// rename. DueDate is kept as the raw persisted string because legacy files
// contain unparsable values that must survive a load/save round-trip.
type Task struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DueDate     string   `json:"due_date"`
	Description string   `json:"description"`
	NextStep    string   `json:"next_step"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	Reminded    bool     `json:"reminded"`
	Attachments []string `json:"attachments"`
}

// NewTask builds a task with a fresh identity and defaulted fields.
func NewTask(name, dueDate, description, nextStep string, priority Priority) Task {
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		ID:          uuid.NewString(),
		Name:        name,
		DueDate:     dueDate,
		Description: description,
		NextStep:    nextStep,
		Priority:    priority,
		Attachments: []string{},
	}
}

// DueAt parses the due date. ok is false for legacy unparsable values.
func (t Task) DueAt() (time.Time, bool) {
	due, err := time.ParseInLocation(DueDateLayout, t.DueDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}
