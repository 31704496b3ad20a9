package service

import (
	"fmt"
	"sort"
	"time"

	"studyplanner/internal/model"
)

// DueStatus classifies a task's urgency relative to a given instant.
type DueStatus int

const (
	StatusOverdue DueStatus = iota
	StatusDueSoon
	StatusNormal
	StatusCompleted
	StatusInvalidDate
)

func (s DueStatus) String() string {
	switch s {
	case StatusOverdue:
		return "overdue"
	case StatusDueSoon:
		return "due-soon"
	case StatusNormal:
		return "normal"
	case StatusCompleted:
		return "completed"
	case StatusInvalidDate:
		return "invalid-date"
	default:
		return "unknown"
	}
}

// ClassifiedTask pairs a task with its due status for display.
type ClassifiedTask struct {
	Task   model.Task
	Status DueStatus
}

// Classify determines the due status of a single task at the given instant.
// An unparsable due date is a status of its own, never an error.
func Classify(task model.Task, now time.Time) DueStatus {
	if task.Completed {
		return StatusCompleted
	}
	due, ok := task.DueAt()
	if !ok {
		return StatusInvalidDate
	}
	switch {
	case due.Before(now):
		return StatusOverdue
	case due.Sub(now) <= 24*time.Hour:
		return StatusDueSoon
	default:
		return StatusNormal
	}
}

// ClassifyAndSort classifies every task and returns a new slice in display
// order: overdue first (most overdue on top), then pending by priority and
// due date, then incomplete tasks with unreadable dates, completed last.
// Pure function of its inputs; the input slice is not touched.
func ClassifyAndSort(tasks []model.Task, now time.Time) []ClassifiedTask {
	out := make([]ClassifiedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ClassifiedTask{Task: t, Status: Classify(t, now)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ga, gb := sortGroup(a.Status), sortGroup(b.Status)
		if ga != gb {
			return ga < gb
		}
		switch ga {
		case 0: // overdue: oldest due date first
			da, _ := a.Task.DueAt()
			db, _ := b.Task.DueAt()
			if !da.Equal(db) {
				return da.Before(db)
			}
		case 1: // pending: priority, then due date
			if ra, rb := a.Task.Priority.Rank(), b.Task.Priority.Rank(); ra != rb {
				return ra < rb
			}
			da, _ := a.Task.DueAt()
			db, _ := b.Task.DueAt()
			if !da.Equal(db) {
				return da.Before(db)
			}
		}
		return a.Task.Name < b.Task.Name
	})

	return out
}

// sortGroup collapses statuses into the four display bands.
func sortGroup(s DueStatus) int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusDueSoon, StatusNormal:
		return 1
	case StatusInvalidDate:
		return 2
	default:
		return 3
	}
}

// TimeLeftLabel renders the urgency suffix shown next to a task.
func TimeLeftLabel(task model.Task, now time.Time) string {
	switch Classify(task, now) {
	case StatusOverdue:
		return "OVERDUE!"
	case StatusDueSoon:
		due, _ := task.DueAt()
		left := due.Sub(now)
		hours := int(left.Hours())
		minutes := int(left.Minutes()) % 60
		return fmt.Sprintf("%dh %dm left", hours, minutes)
	case StatusInvalidDate:
		return "Invalid Date"
	default:
		return ""
	}
}
