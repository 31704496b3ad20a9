package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"studyplanner/internal/model"
)

// GamificationRepository persists per-user points and streak state as a flat
// JSON file (<user>_gamification.json) under the data directory.
type GamificationRepository struct {
	dir string
}

func NewGamificationRepository(dir string) (*GamificationRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return &GamificationRepository{dir: dir}, nil
}

func (r *GamificationRepository) path(username string) string {
	return filepath.Join(r.dir, username+"_gamification.json")
}

// Load reads a user's progress. A missing file yields the zero state; a
// corrupt file yields the zero state plus ErrMalformedData.
func (r *GamificationRepository) Load(username string) (model.Gamification, error) {
	raw, err := os.ReadFile(r.path(username))
	if errors.Is(err, os.ErrNotExist) {
		return model.Gamification{}, nil
	}
	if err != nil {
		return model.Gamification{}, fmt.Errorf("read gamification for %q: %w", username, err)
	}

	var g model.Gamification
	if err := json.Unmarshal(raw, &g); err != nil {
		return model.Gamification{}, fmt.Errorf("%w: gamification for %q: %v", ErrMalformedData, username, err)
	}
	return g, nil
}

// Save writes the progress atomically, same temp-and-rename scheme as tasks.
func (r *GamificationRepository) Save(username string, g model.Gamification) error {
	raw, err := json.MarshalIndent(g, "", "    ")
	if err != nil {
		return fmt.Errorf("encode gamification for %q: %w", username, err)
	}

	tmp, err := os.CreateTemp(r.dir, username+"_gamification_*.json")
	if err != nil {
		return fmt.Errorf("create temp gamification file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write gamification for %q: %w", username, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp gamification file: %w", err)
	}
	if err := os.Rename(tmpName, r.path(username)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace gamification file for %q: %w", username, err)
	}
	return nil
}
