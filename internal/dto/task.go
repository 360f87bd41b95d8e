package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssigneeID  string              `json:"assignee_id"`
	Assignee    *UserRefDTO         `json:"assignee,omitempty"`
	ProjectID   *string             `json:"project_id"`
	Project     *ProjectRefDTO      `json:"project,omitempty"`
	Tags        []string            `json:"tags"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedByID string              `json:"created_by_id"`
	CreatedBy   *UserRefDTO         `json:"created_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// StatCountDTO represents a single grouped count in stats responses
type StatCountDTO struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// TaskStatsResponse represents aggregate task counts for the current user
type TaskStatsResponse struct {
	StatusStats   []StatCountDTO `json:"statusStats"`
	PriorityStats []StatCountDTO `json:"priorityStats"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	d := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssigneeID:  task.AssigneeID,
		ProjectID:   task.ProjectID,
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		CreatedByID: task.CreatedByID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if task.Assignee.ID != "" {
		ref := ToUserRefDTO(task.Assignee)
		d.Assignee = &ref
	}
	if task.CreatedBy.ID != "" {
		ref := ToUserRefDTO(task.CreatedBy)
		d.CreatedBy = &ref
	}
	if task.Project != nil {
		ref := ToProjectRefDTO(*task.Project)
		d.Project = &ref
	}
	return d
}

// ToTaskDTOs converts a slice of Task models to TaskDTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, ToTaskDTO(task))
	}
	return dtos
}

// ToStatCountDTOs converts repository stat groups to StatCountDTOs
func ToStatCountDTOs(groups []repository.TaskStatGroup) []StatCountDTO {
	dtos := make([]StatCountDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, StatCountDTO{ID: g.Key, Count: g.Count})
	}
	return dtos
}
