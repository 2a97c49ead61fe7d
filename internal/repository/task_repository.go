package repository

import (
	"context"

	"github.com/yukikurage/taskboard-api/internal/docstore"
	"github.com/yukikurage/taskboard-api/internal/models"
)

// DocTaskRepository is a docstore implementation of TaskRepository
type DocTaskRepository struct {
	store docstore.Store
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(store docstore.Store) TaskRepository {
	return &DocTaskRepository{store: store}
}

// Create stores a new task and sets its ID
func (r *DocTaskRepository) Create(ctx context.Context, task *models.Task) error {
	id, err := r.store.Insert(ctx, TasksCollection, encodeTask(task))
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// FindByID finds a task by ID
func (r *DocTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	rec, err := r.store.GetByID(ctx, TasksCollection, id)
	if err != nil {
		return nil, err
	}
	task := decodeTask(rec)
	return &task, nil
}

// ListByOwner returns the tasks owned by a user, oldest first
func (r *DocTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	recs, err := r.store.Query(ctx, TasksCollection, docstore.Eq(fieldTaskOwnerID, ownerID))
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, len(recs))
	for i, rec := range recs {
		tasks[i] = decodeTask(rec)
	}
	return tasks, nil
}

// Replace overwrites the stored task with the same ID
func (r *DocTaskRepository) Replace(ctx context.Context, task *models.Task) error {
	return r.store.Replace(ctx, TasksCollection, task.ID, encodeTask(task))
}

// UpdateStatus changes only the status of a task
func (r *DocTaskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return r.store.Patch(ctx, TasksCollection, id, docstore.Record{fieldTaskStatus: int(status)})
}

// Delete removes a task
func (r *DocTaskRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, TasksCollection, id)
}

func encodeTask(task *models.Task) docstore.Record {
	rec := docstore.Record{
		fieldTaskTitle:       task.Title,
		fieldTaskDescription: task.Description,
		fieldTaskOwnerID:     task.OwnerID,
		fieldTaskStatus:      int(task.Status),
		fieldTaskDueDate:     nil,
	}
	if task.DueDate != nil {
		rec[fieldTaskDueDate] = *task.DueDate
	}
	return rec
}

// decodeTask fills missing text with "" and a missing status with TODO.
// Unknown status codes are normalized by models.TaskStatusFromCode.
func decodeTask(rec docstore.Record) models.Task {
	return models.Task{
		ID:          stringField(rec, docstore.IDField),
		Title:       stringField(rec, fieldTaskTitle),
		Description: stringField(rec, fieldTaskDescription),
		DueDate:     timeField(rec, fieldTaskDueDate),
		OwnerID:     stringField(rec, fieldTaskOwnerID),
		Status:      models.TaskStatusFromCode(intField(rec, fieldTaskStatus, int(models.TaskStatusTodo))),
	}
}
