package repository

import (
	"context"

	"github.com/yukikurage/taskboard-api/internal/docstore"
	"github.com/yukikurage/taskboard-api/internal/models"
)

// Collection names
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// Stored field names. Task fields keep the names legacy documents were written with.
const (
	fieldUserName     = "name"
	fieldUserPassword = "password"

	fieldTaskTitle       = "title"
	fieldTaskDescription = "description"
	fieldTaskDueDate     = "data"
	fieldTaskOwnerID     = "usuarioId"
	fieldTaskStatus      = "status"
)

// ErrNotFound is returned when the referenced document does not exist.
var ErrNotFound = docstore.ErrNotFound

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create stores a new task and sets its ID
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// ListByOwner returns the tasks owned by a user, oldest first
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)

	// Replace overwrites the stored task with the same ID
	Replace(ctx context.Context, task *models.Task) error

	// UpdateStatus changes only the status of a task
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error

	// Delete removes a task
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create stores a new user and sets its ID
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByName returns the first user with the given name. Stored names are
	// not guaranteed unique; when duplicates exist the earliest inserted wins.
	FindByName(ctx context.Context, name string) (*models.User, error)
}
