package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/dto"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListTasksInput{
		Search:     c.Query("search"),
		Pagination: utils.GetPaginationParams(c, constants.DefaultTaskPageSize),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority filter")
			return
		}
		input.Priority = &priority
	}
	if raw := c.Query("project_id"); raw != "" {
		input.ProjectID = &raw
	}

	tasks, total, err := h.taskService.List(actor, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Pagination: utils.NewPaginationResponse(input.Pagination, total),
	})
}

// GetTaskStats returns grouped task counts for the current user.
func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.taskService.Stats(actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskStatsResponse{
		StatusStats:   dto.ToStatCountDTOs(stats.StatusStats),
		PriorityStats: dto.ToStatCountDTOs(stats.PriorityStats),
	})
}

// GetTask returns a single task visible to the current user.
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.Get(actor, c.Param("id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task created by the current user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		AssigneeID  string     `json:"assignee_id"`
		ProjectID   *string    `json:"project_id"`
		Tags        []string   `json:"tags"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task. The raw body is
// inspected so that an explicit null can be told apart from an omitted
// field.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if raw, ok := body["title"]; ok {
		title, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "title must be a string")
			return
		}
		input.Title = &title
	}
	if raw, ok := body["description"]; ok {
		if raw == nil {
			input.ClearDescription = true
		} else {
			description, ok := raw.(string)
			if !ok {
				apierrors.BadRequest(c, "description must be a string")
				return
			}
			input.Description = &description
		}
	}
	if raw, ok := body["status"]; ok {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "status must be a string")
			return
		}
		status := models.TaskStatus(s)
		input.Status = &status
	}
	if raw, ok := body["priority"]; ok {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "priority must be a string")
			return
		}
		priority := models.TaskPriority(s)
		input.Priority = &priority
	}
	if raw, ok := body["assignee_id"]; ok {
		assigneeID, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "assignee_id must be a string")
			return
		}
		input.AssigneeID = &assigneeID
	}
	if raw, ok := body["project_id"]; ok {
		if raw == nil {
			input.ClearProject = true
		} else {
			projectID, ok := raw.(string)
			if !ok {
				apierrors.BadRequest(c, "project_id must be a string")
				return
			}
			input.ProjectID = &projectID
		}
	}
	if raw, ok := body["tags"]; ok {
		items, ok := raw.([]any)
		if !ok {
			apierrors.BadRequest(c, "tags must be an array of strings")
			return
		}
		tags := make([]string, 0, len(items))
		for _, item := range items {
			tag, ok := item.(string)
			if !ok {
				apierrors.BadRequest(c, "tags must be an array of strings")
				return
			}
			tags = append(tags, tag)
		}
		input.Tags = tags
	}
	if raw, ok := body["due_date"]; ok {
		if raw == nil {
			input.ClearDueDate = true
		} else {
			s, ok := raw.(string)
			if !ok {
				apierrors.BadRequest(c, "due_date must be a timestamp")
				return
			}
			dueDate, err := time.Parse(time.RFC3339, s)
			if err != nil {
				apierrors.BadRequest(c, "due_date must be a timestamp")
				return
			}
			input.DueDate = &dueDate
		}
	}

	task, err := h.taskService.Update(actor, c.Param("id"), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task created by the current user.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.taskService.Delete(actor, c.Param("id")); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrTaskTitleTooLong),
		errors.Is(err, services.ErrTaskDescriptionTooLong),
		errors.Is(err, services.ErrAssigneeRequired),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
