package model

import "time"

// DateLayout is the wire format for streak dates in the gamification file.
const DateLayout = "2006-01-02"

// StreakState tracks consecutive calendar days with at least one completion.
// LastCompletedDate is nil until the first completion ever.
type StreakState struct {
	CurrentStreak     int     `json:"current_streak"`
	LastCompletedDate *string `json:"last_completed_date"`
}

// LastDate parses LastCompletedDate. ok is false when no completion has been
// recorded yet or the stored value is corrupt.
func (s StreakState) LastDate() (time.Time, bool) {
	if s.LastCompletedDate == nil {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, *s.LastCompletedDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Gamification is the per-user progress record persisted alongside tasks.
// Points only ever grow: a task awards points once, on its first completion.
type Gamification struct {
	Points int         `json:"points"`
	Streak StreakState `json:"streak"`
}
