package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/session"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

var (
	ErrTaskNotFound = errors.New("task not found")

	ErrTitleRequired       = &ValidationError{Field: "title", Message: "title is required"}
	ErrDescriptionRequired = &ValidationError{Field: "description", Message: "description is required"}
	ErrDueDateRequired     = &ValidationError{Field: "due_date", Message: "due date is required"}
	ErrInvalidDueDate      = &ValidationError{Field: "due_date", Message: "due date must be a valid DD/MM/YYYY date"}
	ErrDueDateInPast       = &ValidationError{Field: "due_date", Message: "due date cannot be in the past"}
	ErrDueDateTooFar       = &ValidationError{Field: "due_date", Message: "due date is too far in the future"}
	ErrInvalidStatus       = &ValidationError{Field: "status", Message: "status must be TODO or DONE"}
)

// TaskPolicy holds the validation rules that differ between deployments.
type TaskPolicy struct {
	// RejectPastDueDate refuses due dates before today.
	RejectPastDueDate bool
	// RequireDueDate refuses drafts without a due date.
	RequireDueDate bool
	// MaxDueDateDays caps how far ahead a due date may be. Zero means no cap.
	MaxDueDateDays int
	// StrictOwnership makes GetByID, SetStatus and Delete treat other users'
	// tasks as missing. Without it those calls act on any task id.
	StrictOwnership bool
}

// TaskDraft is the caller-supplied content of a task for Create and Update.
type TaskDraft struct {
	Title       string
	Description string
	// DueDate is DD/MM/YYYY or empty for no due date.
	DueDate string
	// Status is honored by Update only; Create always starts at TODO.
	Status *models.TaskStatus
	// OwnerID is ignored. The owner always comes from the session.
	OwnerID string
}

// TaskService handles task business logic for the user held in its session
type TaskService struct {
	taskRepo repository.TaskRepository
	session  *session.Session
	policy   TaskPolicy
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, sess *session.Session, policy TaskPolicy) *TaskService {
	if sess == nil {
		sess = session.New()
	}
	return &TaskService{
		taskRepo: taskRepo,
		session:  sess,
		policy:   policy,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for date-only comparisons.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// List returns the session user's tasks. With nobody logged in it returns an empty list.
func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	user, ok := s.session.Current()
	if !ok {
		return []models.Task{}, nil
	}

	tasks, err := s.taskRepo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return tasks, nil
}

// GetByID returns a task by id
func (s *TaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Create validates the draft and stores a TODO task owned by the session user
func (s *TaskService) Create(ctx context.Context, draft TaskDraft) (*models.Task, error) {
	user, ok := s.session.Current()
	if !ok {
		return nil, ErrUnauthenticated
	}

	dueDate, err := s.validate(draft)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     dueDate,
		OwnerID:     user.ID,
		Status:      models.TaskStatusTodo,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, storeFailure(err)
	}

	return task, nil
}

// Update replaces a task with the draft, re-stamped with the session user as owner.
// The stored status is kept unless the draft carries one.
func (s *TaskService) Update(ctx context.Context, id string, draft TaskDraft) (*models.Task, error) {
	user, ok := s.session.Current()
	if !ok {
		return nil, ErrUnauthenticated
	}

	dueDate, err := s.validate(draft)
	if err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.policy.StrictOwnership && existing.OwnerID != user.ID {
		return nil, ErrTaskNotFound
	}

	status := existing.Status
	if draft.Status != nil {
		status = *draft.Status
	}

	task := &models.Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     dueDate,
		OwnerID:     user.ID,
		Status:      status,
	}

	if err := s.taskRepo.Replace(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storeFailure(err)
	}

	return task, nil
}

// SetStatus changes only the status of a task
func (s *TaskService) SetStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if s.policy.StrictOwnership {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}

	if err := s.taskRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return storeFailure(err)
	}
	return nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if s.policy.StrictOwnership {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return storeFailure(err)
	}
	return nil
}

func (s *TaskService) find(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", storeFailure(err))
	}
	return task, nil
}

// checkOwnership hides other users' tasks when StrictOwnership is on
func (s *TaskService) checkOwnership(task *models.Task) error {
	if !s.policy.StrictOwnership {
		return nil
	}
	user, ok := s.session.Current()
	if !ok {
		return ErrUnauthenticated
	}
	if task.OwnerID != user.ID {
		return ErrTaskNotFound
	}
	return nil
}

// validate checks the draft before any store call and returns the parsed due date
func (s *TaskService) validate(draft TaskDraft) (*time.Time, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	if draft.Status != nil && !draft.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if strings.TrimSpace(draft.DueDate) == "" {
		if s.policy.RequireDueDate {
			return nil, ErrDueDateRequired
		}
		return nil, nil
	}

	dueDate, err := utils.ParseDate(strings.TrimSpace(draft.DueDate))
	if err != nil {
		return nil, ErrInvalidDueDate
	}

	today := utils.StartOfDay(s.now())
	if s.policy.RejectPastDueDate && dueDate.Before(today) {
		return nil, ErrDueDateInPast
	}
	if s.policy.MaxDueDateDays > 0 && dueDate.After(today.AddDate(0, 0, s.policy.MaxDueDateDays)) {
		return nil, ErrDueDateTooFar
	}

	return &dueDate, nil
}
