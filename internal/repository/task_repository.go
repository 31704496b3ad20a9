package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"studyplanner/internal/model"
)

var (
	// ErrMalformedData marks a corrupt per-user file. Loads report it but
	// still hand back a usable (empty) collection.
	ErrMalformedData     = errors.New("malformed persisted data")
	ErrDuplicateTaskName = errors.New("task with this name already exists")
	ErrTaskNotFound      = errors.New("task not found")
)

// TaskRepository persists each user's ordered task collection as a flat JSON
// file (<user>_tasks.json) under the data directory.
type TaskRepository struct {
	dir string
}

func NewTaskRepository(dir string) (*TaskRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return &TaskRepository{dir: dir}, nil
}

func (r *TaskRepository) path(username string) string {
	return filepath.Join(r.dir, username+"_tasks.json")
}

// Load reads a user's tasks. A missing file is an empty collection. A corrupt
// file yields an empty collection plus ErrMalformedData so the caller can
// report it without crashing.
func (r *TaskRepository) Load(username string) ([]model.Task, error) {
	raw, err := os.ReadFile(r.path(username))
	if errors.Is(err, os.ErrNotExist) {
		return []model.Task{}, nil
	}
	if err != nil {
		return []model.Task{}, fmt.Errorf("read tasks for %q: %w", username, err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return []model.Task{}, fmt.Errorf("%w: tasks for %q: %v", ErrMalformedData, username, err)
	}

	assigned := false
	for i := range tasks {
		if normalize(&tasks[i]) {
			assigned = true
		}
	}
	if assigned {
		// Write the new identities back right away; otherwise a legacy
		// record would get a different ID on every load and nothing keyed
		// on it (edits, reminder dedup) could ever find it again.
		if err := r.Save(username, tasks); err != nil {
			log.Printf("tasks: persist backfilled ids for %q: %v", username, err)
		}
	}
	return tasks, nil
}

// normalize fills defaults for fields legacy records may omit. It reports
// whether the record had to be assigned a fresh identity.
func normalize(t *model.Task) bool {
	assigned := false
	if t.ID == "" {
		t.ID = uuid.NewString()
		assigned = true
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Attachments == nil {
		t.Attachments = []string{}
	}
	return assigned
}

// Save writes the collection atomically: the new content is written to a
// temp file and renamed over the old one, so a failed write leaves the prior
// file intact.
func (r *TaskRepository) Save(username string, tasks []model.Task) error {
	raw, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return fmt.Errorf("encode tasks for %q: %w", username, err)
	}

	tmp, err := os.CreateTemp(r.dir, username+"_tasks_*.json")
	if err != nil {
		return fmt.Errorf("create temp task file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write tasks for %q: %w", username, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp task file: %w", err)
	}
	if err := os.Rename(tmpName, r.path(username)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace task file for %q: %w", username, err)
	}
	return nil
}

// Add appends a task, rejecting duplicate names within the user's collection.
func (r *TaskRepository) Add(username string, task model.Task) error {
	tasks, err := r.Load(username)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.Name == task.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateTaskName, task.Name)
		}
	}
	normalize(&task)
	return r.Save(username, append(tasks, task))
}

// Update replaces the task with the same ID. A rename is rejected when the
// new name collides with another task.
func (r *TaskRepository) Update(username string, task model.Task) error {
	tasks, err := r.Load(username)
	if err != nil {
		return err
	}
	idx := -1
	for i, t := range tasks {
		if t.ID == task.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: id %s", ErrTaskNotFound, task.ID)
	}
	for i, t := range tasks {
		if i != idx && t.Name == task.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateTaskName, task.Name)
		}
	}
	normalize(&task)
	tasks[idx] = task
	return r.Save(username, tasks)
}

// Delete removes a task by ID and returns the removed record so the caller
// can cascade attachment cleanup.
func (r *TaskRepository) Delete(username, taskID string) (model.Task, error) {
	tasks, err := r.Load(username)
	if err != nil {
		return model.Task{}, err
	}
	for i, t := range tasks {
		if t.ID == taskID {
			tasks = append(tasks[:i], tasks[i+1:]...)
			if err := r.Save(username, tasks); err != nil {
				return model.Task{}, err
			}
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("%w: id %s", ErrTaskNotFound, taskID)
}

// FindByID looks a task up by its stable identity.
func (r *TaskRepository) FindByID(username, taskID string) (model.Task, error) {
	tasks, err := r.Load(username)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("%w: id %s", ErrTaskNotFound, taskID)
}
