package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"studyplanner/internal/model"
	"studyplanner/internal/repository"
)

var ErrAlreadyCompleted = errors.New("task is already completed")

// TaskInput represents data required to create or update a task.
type TaskInput struct {
	Name        string
	DueDate     string
	Description string
	NextStep    string
	Priority    model.Priority
}

// TaskService wraps task CRUD and the side effects of completing a task.
type TaskService struct {
	tasks        *repository.TaskRepository
	gamification *GamificationService
	dispatcher   *ReminderDispatcher

	// attachmentsDir is the root of the per-task attachment tree; deleting
	// a task removes its subtree.
	attachmentsDir string
}

func NewTaskService(tasks *repository.TaskRepository, gamification *GamificationService, dispatcher *ReminderDispatcher, attachmentsDir string) *TaskService {
	return &TaskService{
		tasks:          tasks,
		gamification:   gamification,
		dispatcher:     dispatcher,
		attachmentsDir: attachmentsDir,
	}
}

// Add creates a task for the user. Names must be unique within the
// collection.
func (s *TaskService) Add(user *model.User, input TaskInput) (model.Task, error) {
	if input.Name == "" {
		return model.Task{}, fmt.Errorf("task name cannot be empty")
	}
	task := model.NewTask(input.Name, input.DueDate, input.Description, input.NextStep, input.Priority)
	if err := s.tasks.Add(user.Username, task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// List returns the user's tasks in stored order.
func (s *TaskService) List(user *model.User) ([]model.Task, error) {
	return s.tasks.Load(user.Username)
}

// Classified returns the user's tasks in display order with due statuses.
func (s *TaskService) Classified(user *model.User, now time.Time) ([]ClassifiedTask, error) {
	tasks, err := s.tasks.Load(user.Username)
	if err != nil {
		return nil, err
	}
	return ClassifyAndSort(tasks, now), nil
}

// Update edits a task in place. Completion state, reminder state and
// attachments survive the edit; a rename that collides with another task is
// rejected.
func (s *TaskService) Update(user *model.User, taskID string, input TaskInput) (model.Task, error) {
	if input.Name == "" {
		return model.Task{}, fmt.Errorf("task name cannot be empty")
	}
	task, err := s.tasks.FindByID(user.Username, taskID)
	if err != nil {
		return model.Task{}, err
	}

	task.Name = input.Name
	task.DueDate = input.DueDate
	task.Description = input.Description
	task.NextStep = input.NextStep
	if input.Priority != "" {
		task.Priority = input.Priority
	}

	if err := s.tasks.Update(user.Username, task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Complete marks a task done and applies the completion side effects: points
// and streak update, desktop notification, optional congratulation SMS.
// Completing an already-completed task is rejected, so the reward fires only
// on the false->true edge.
func (s *TaskService) Complete(user *model.User, taskID string, now time.Time) (model.Task, model.Gamification, error) {
	task, err := s.tasks.FindByID(user.Username, taskID)
	if err != nil {
		return model.Task{}, model.Gamification{}, err
	}
	if task.Completed {
		g, gerr := s.gamification.Current(user.Username)
		if gerr != nil {
			g = model.Gamification{}
		}
		return task, g, ErrAlreadyCompleted
	}

	task.Completed = true
	if err := s.tasks.Update(user.Username, task); err != nil {
		return model.Task{}, model.Gamification{}, err
	}

	g, err := s.gamification.OnTaskCompleted(user.Username, now)
	if err != nil {
		return task, g, err
	}

	if s.dispatcher != nil {
		s.dispatcher.AnnounceCompletion(*user, task)
	}
	return task, g, nil
}

// Delete removes a task and its attachment directory.
func (s *TaskService) Delete(user *model.User, taskID string) error {
	task, err := s.tasks.Delete(user.Username, taskID)
	if err != nil {
		return err
	}

	if s.attachmentsDir != "" {
		dir := filepath.Join(s.attachmentsDir, user.Username, task.ID)
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("task: remove attachments for %q: %v", task.Name, err)
		}
	}
	return nil
}

// Attach records a file path on the task. Storing the file itself is the
// caller's concern.
func (s *TaskService) Attach(user *model.User, taskID, path string) (model.Task, error) {
	task, err := s.tasks.FindByID(user.Username, taskID)
	if err != nil {
		return model.Task{}, err
	}
	task.Attachments = append(task.Attachments, path)
	if err := s.tasks.Update(user.Username, task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}
