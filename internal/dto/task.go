package dto

import (
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *string           `json:"due_date"`
	OwnerID     string            `json:"owner_id"`
	Status      models.TaskStatus `json:"status"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// BoardDTO is the task list split into its TODO and DONE columns
type BoardDTO struct {
	Todo []TaskDTO `json:"todo"`
	Done []TaskDTO `json:"done"`
}

// TaskMutationResponse carries the affected task and the re-fetched list
type TaskMutationResponse struct {
	Task  *TaskDTO  `json:"task,omitempty"`
	Tasks []TaskDTO `json:"tasks"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:   user.ID,
		Name: user.Name,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		OwnerID:     task.OwnerID,
		Status:      task.Status,
	}

	if task.DueDate != nil {
		formatted := utils.FormatDate(*task.DueDate)
		dto.DueDate = &formatted
	}

	return dto
}

// ToTaskDTOs converts tasks keeping their order. The result is never nil.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts one page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize, totalCount int) TaskListResponse {
	totalPages := totalCount / pageSize
	if totalCount%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToBoardDTO converts a Board
func ToBoardDTO(board services.Board) BoardDTO {
	return BoardDTO{
		Todo: ToTaskDTOs(board.Todo),
		Done: ToTaskDTOs(board.Done),
	}
}
