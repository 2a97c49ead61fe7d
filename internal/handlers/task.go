package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

type TaskHandler struct {
	taskRepo repository.TaskRepository
	policy   services.TaskPolicy
	logger   *slog.Logger
}

func NewTaskHandler(taskRepo repository.TaskRepository, policy services.TaskPolicy, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
		policy:   policy,
		logger:   logger,
	}
}

// taskRequest is the body accepted by create and update
type taskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DueDate     string             `json:"due_date"`
	Status      *models.TaskStatus `json:"status"`
	OwnerID     string             `json:"owner_id"`
}

func (r taskRequest) draft() services.TaskDraft {
	return services.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Status:      r.Status,
		OwnerID:     r.OwnerID,
	}
}

// service binds the task service to the session of this request
func (h *TaskHandler) service(c *gin.Context) *services.TaskService {
	return services.NewTaskService(h.taskRepo, middleware.GetSession(c), h.policy)
}

// ListTasks returns the current user's tasks, optionally filtered by q and status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.service(c).List(c.Request.Context())
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	if statusParam := c.Query("status"); statusParam != "" {
		status, err := models.ParseTaskStatus(statusParam)
		if err != nil {
			apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": "status"})
			return
		}
		tasks = services.FilterByStatus(tasks, status)
	}
	tasks = services.FilterByText(tasks, c.Query("q"))

	params := utils.GetPaginationParams(c)
	page := utils.Paginate(tasks, params)

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page, params.Page, params.Limit, len(tasks)))
}

// Board returns the current user's tasks grouped into TODO and DONE
func (h *TaskHandler) Board(c *gin.Context) {
	tasks, err := h.service(c).List(c.Request.Context())
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	board := services.GroupByStatus(services.FilterByText(tasks, c.Query("q")))
	c.JSON(http.StatusOK, dto.ToBoardDTO(board))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.service(c).GetByID(c.Request.Context(), middleware.GetTaskID(c))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	svc := h.service(c)
	task, err := svc.Create(c.Request.Context(), req.draft())
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	h.respondWithList(c, svc, http.StatusCreated, task)
}

// UpdateTask replaces a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	svc := h.service(c)
	task, err := svc.Update(c.Request.Context(), middleware.GetTaskID(c), req.draft())
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	h.respondWithList(c, svc, http.StatusOK, task)
}

// UpdateStatus moves a task between TODO and DONE
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status *models.TaskStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, services.ErrInvalidStatus.Message, gin.H{"field": "status"})
		return
	}
	if req.Status == nil {
		apierrors.BadRequestWithDetails(c, services.ErrInvalidStatus.Message, gin.H{"field": "status"})
		return
	}

	svc := h.service(c)
	if err := svc.SetStatus(c.Request.Context(), middleware.GetTaskID(c), *req.Status); err != nil {
		h.respondTaskError(c, err)
		return
	}

	h.respondWithList(c, svc, http.StatusOK, nil)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	svc := h.service(c)
	if err := svc.Delete(c.Request.Context(), middleware.GetTaskID(c)); err != nil {
		h.respondTaskError(c, err)
		return
	}

	h.respondWithList(c, svc, http.StatusOK, nil)
}

// respondWithList re-fetches the list after a mutation instead of patching it locally
func (h *TaskHandler) respondWithList(c *gin.Context, svc *services.TaskService, status int, task *models.Task) {
	tasks, err := svc.List(c.Request.Context())
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	response := dto.TaskMutationResponse{Tasks: dto.ToTaskDTOs(tasks)}
	if task != nil {
		taskDTO := dto.ToTaskDTO(*task)
		response.Task = &taskDTO
	}
	c.JSON(status, response)
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c, err.Error())
	case errors.As(err, &validationErr):
		apierrors.BadRequestWithDetails(c, validationErr.Message, gin.H{"field": validationErr.Field})
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Debug("task request cancelled", "path", c.FullPath())
		c.Abort()
	case errors.Is(err, services.ErrStoreFailure), errors.Is(err, context.DeadlineExceeded):
		h.logger.Error("task store failure", "path", c.FullPath(), "error", err)
		apierrors.ServiceUnavailable(c, services.ErrStoreFailure.Error())
	default:
		h.logger.Error("task request failed", "path", c.FullPath(), "error", err)
		apierrors.InternalError(c, "")
	}
}
