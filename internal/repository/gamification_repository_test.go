package repository

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"studyplanner/internal/model"
)

func TestGamificationRepository_RoundTrip(t *testing.T) {
	repo, err := NewGamificationRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := "2025-04-01"
	g := model.Gamification{
		Points: 120,
		Streak: model.StreakState{CurrentStreak: 4, LastCompletedDate: &last},
	}
	if err := repo.Save("alice", g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := repo.Load("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, g) {
		t.Fatalf("round-trip mismatch:\ngot  %+v\nwant %+v", loaded, g)
	}
}

func TestGamificationRepository_FirstLoadIsZeroState(t *testing.T) {
	repo, err := NewGamificationRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, err := repo.Load("newcomer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Points != 0 || g.Streak.CurrentStreak != 0 || g.Streak.LastCompletedDate != nil {
		t.Fatalf("first load not zero state: %+v", g)
	}
}

func TestGamificationRepository_MalformedFailsSoft(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewGamificationRepository(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "alice_gamification.json"), []byte("?!"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := repo.Load("alice")
	if !errors.Is(err, ErrMalformedData) {
		t.Fatalf("got %v, want ErrMalformedData", err)
	}
	if g.Points != 0 || g.Streak.CurrentStreak != 0 {
		t.Fatalf("corrupt file must yield zero state, got %+v", g)
	}
}

func TestGamificationRepository_NullLastDateOnWire(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewGamificationRepository(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wire := `{"points": 0, "streak": {"current_streak": 0, "last_completed_date": null}}`
	if err := os.WriteFile(filepath.Join(dir, "bob_gamification.json"), []byte(wire), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := repo.Load("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Streak.LastCompletedDate != nil {
		t.Fatalf("null last_completed_date decoded as %v", *g.Streak.LastCompletedDate)
	}
	if _, ok := g.Streak.LastDate(); ok {
		t.Fatalf("LastDate reported a date for null state")
	}
}
