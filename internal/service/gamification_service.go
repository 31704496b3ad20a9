package service

import (
	"errors"
	"log"
	"time"

	"studyplanner/internal/model"
	"studyplanner/internal/repository"
)

// PointsPerCompletion is the fixed reward for completing a task, awarded at
// most once per task over its lifetime.
const PointsPerCompletion = 10

// NextStreak advances streak state for a completion on the given day.
// Same-day repeats leave the count unchanged; the next consecutive day
// increments it; any gap resets it to 1.
func NextStreak(s model.StreakState, today time.Time) model.StreakState {
	day := today.Format(model.DateLayout)

	last, ok := s.LastDate()
	switch {
	case !ok:
		s.CurrentStreak = 1
	case last.Format(model.DateLayout) == day:
		// already counted today
	case last.AddDate(0, 0, 1).Format(model.DateLayout) == day:
		s.CurrentStreak++
	default:
		s.CurrentStreak = 1
	}

	s.LastCompletedDate = &day
	return s
}

// AwardPoints adds a reward to the accumulator. Points never decrease.
func AwardPoints(current, amount int) int {
	if amount < 0 {
		return current
	}
	return current + amount
}

// GamificationService owns the per-user points and streak record.
type GamificationService struct {
	repo *repository.GamificationRepository
}

func NewGamificationService(repo *repository.GamificationRepository) *GamificationService {
	return &GamificationService{repo: repo}
}

// Current returns the user's progress. A corrupt file is reported and reset
// to the zero state, matching how the store fails soft.
func (s *GamificationService) Current(username string) (model.Gamification, error) {
	g, err := s.repo.Load(username)
	if errors.Is(err, repository.ErrMalformedData) {
		log.Printf("gamification: %v, resetting", err)
		return model.Gamification{}, nil
	}
	return g, err
}

// OnTaskCompleted applies one qualifying completion: +10 points and a streak
// update for the completion day. The caller gates this on the false->true
// completion edge so re-completing a task never pays twice.
func (s *GamificationService) OnTaskCompleted(username string, completedAt time.Time) (model.Gamification, error) {
	g, err := s.Current(username)
	if err != nil {
		return g, err
	}

	g.Points = AwardPoints(g.Points, PointsPerCompletion)
	g.Streak = NextStreak(g.Streak, completedAt)

	if err := s.repo.Save(username, g); err != nil {
		return g, err
	}
	return g, nil
}
