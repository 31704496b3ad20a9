package repository

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"studyplanner/internal/model"
)

func TestTaskRepository_RoundTrip(t *testing.T) {
	repo, err := NewTaskRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks := []model.Task{
		model.NewTask("Essay", "2025-01-01 10:00", "final draft", "proofread", model.PriorityHigh),
		model.NewTask("Lab", "someday", "", "", model.PriorityLow),
	}
	tasks[0].Attachments = []string{"notes/outline.pdf"}
	tasks[1].Completed = true

	if err := repo.Save("alice", tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := repo.Load("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, tasks) {
		t.Fatalf("round-trip mismatch:\ngot  %+v\nwant %+v", loaded, tasks)
	}
}

func TestTaskRepository_LoadDefaultsLegacyRecords(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewTaskRepository(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A record written by an old version: no id, priority, attachments...
	legacy := `[{"name": "Old essay", "due_date": "2024-12-01 09:00"}]`
	if err := os.WriteFile(filepath.Join(dir, "bob_tasks.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := repo.Load("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d tasks, want 1", len(loaded))
	}
	got := loaded[0]
	if got.ID == "" {
		t.Fatalf("legacy record not assigned an id")
	}
	if got.Priority != model.PriorityMedium {
		t.Fatalf("priority = %q, want Medium", got.Priority)
	}
	if got.Description != "" || got.NextStep != "" || got.Completed || got.Reminded {
		t.Fatalf("optional fields not defaulted: %+v", got)
	}
	if got.Attachments == nil || len(got.Attachments) != 0 {
		t.Fatalf("attachments = %#v, want empty list", got.Attachments)
	}

	// The defaults must survive a save/load cycle unchanged.
	if err := repo.Save("bob", loaded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := repo.Load("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(again, loaded) {
		t.Fatalf("defaults changed across round-trip:\ngot  %+v\nwant %+v", again, loaded)
	}
}

func TestTaskRepository_BackfilledIDIsStableAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewTaskRepository(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	legacy := `[{"name": "Old essay", "due_date": "2025-01-01 10:00", "reminded": true}]`
	if err := os.WriteFile(filepath.Join(dir, "bob_tasks.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := repo.Load("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := repo.Load("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first[0].ID == "" {
		t.Fatalf("legacy record not assigned an id")
	}
	if first[0].ID != second[0].ID {
		t.Fatalf("legacy record changed identity across loads: %q then %q", first[0].ID, second[0].ID)
	}

	// The assigned identity is good for mutation, not just display.
	if _, err := repo.FindByID("bob", first[0].ID); err != nil {
		t.Fatalf("lookup by assigned id failed: %v", err)
	}
}

func TestTaskRepository_MissingFileIsEmpty(t *testing.T) {
	repo, err := NewTaskRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tasks, err := repo.Load("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("got %d tasks, want 0", len(tasks))
	}
}

func TestTaskRepository_MalformedFileFailsSoft(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewTaskRepository(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "alice_tasks.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks, err := repo.Load("alice")
	if !errors.Is(err, ErrMalformedData) {
		t.Fatalf("got %v, want ErrMalformedData", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("corrupt file must yield a usable empty collection, got %#v", tasks)
	}
}

func TestTaskRepository_AddRejectsDuplicateNames(t *testing.T) {
	repo, err := NewTaskRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Add("alice", model.NewTask("Essay", "2025-01-01 10:00", "", "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = repo.Add("alice", model.NewTask("Essay", "2025-02-01 10:00", "", "", ""))
	if !errors.Is(err, ErrDuplicateTaskName) {
		t.Fatalf("got %v, want ErrDuplicateTaskName", err)
	}

	// Same name under another user is fine.
	if err := repo.Add("bob", model.NewTask("Essay", "2025-01-01 10:00", "", "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskRepository_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewTaskRepository(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := []model.Task{model.NewTask("One", "2025-01-01 10:00", "", "", "")}
	if err := repo.Save("alice", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := []model.Task{model.NewTask("Two", "2025-01-02 10:00", "", "", "")}
	if err := repo.Save("alice", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := repo.Load("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, second) {
		t.Fatalf("got %+v, want %+v", loaded, second)
	}

	// No temp debris left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the task file in %s, found %d entries", dir, len(entries))
	}
}

func TestTaskRepository_DeleteReturnsRemovedTask(t *testing.T) {
	repo, err := NewTaskRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task := model.NewTask("Essay", "2025-01-01 10:00", "", "", "")
	if err := repo.Add("alice", task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := repo.Delete("alice", task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Name != "Essay" {
		t.Fatalf("removed %q, want Essay", removed.Name)
	}

	if _, err := repo.Delete("alice", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("got %v, want ErrTaskNotFound", err)
	}
}

func TestTaskRepository_UpdateUnknownIDIsNotFound(t *testing.T) {
	repo, err := NewTaskRepository(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Add("alice", model.NewTask("Essay", "2025-01-01 10:00", "", "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown identity wins over a name collision with an existing task.
	ghost := model.NewTask("Essay", "2025-02-01 10:00", "", "", "")
	if err := repo.Update("alice", ghost); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("got %v, want ErrTaskNotFound", err)
	}
}
