package services

import (
	"strings"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

// Board is the task list split by status, each column in list order.
type Board struct {
	Todo []models.Task
	Done []models.Task
}

// FilterByText keeps tasks whose title, description or formatted due date
// contains query, ignoring case. A blank query returns tasks unchanged.
func FilterByText(tasks []models.Task, query string) []models.Task {
	if strings.TrimSpace(query) == "" {
		return tasks
	}

	needle := strings.ToLower(query)
	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if matchesText(task, needle) {
			result = append(result, task)
		}
	}
	return result
}

func matchesText(task models.Task, needle string) bool {
	if strings.Contains(strings.ToLower(task.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(task.Description), needle) {
		return true
	}
	return task.DueDate != nil && strings.Contains(utils.FormatDate(*task.DueDate), needle)
}

// FilterByStatus keeps tasks with exactly the given status.
func FilterByStatus(tasks []models.Task, status models.TaskStatus) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == status {
			result = append(result, task)
		}
	}
	return result
}

// GroupByStatus builds the board view.
func GroupByStatus(tasks []models.Task) Board {
	return Board{
		Todo: FilterByStatus(tasks, models.TaskStatusTodo),
		Done: FilterByStatus(tasks, models.TaskStatusDone),
	}
}
