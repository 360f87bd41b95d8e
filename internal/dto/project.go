package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Progress    int                  `json:"progress"`
	DueDate     *time.Time           `json:"due_date"`
	CreatedByID string               `json:"created_by_id"`
	CreatedBy   *UserRefDTO          `json:"created_by,omitempty"`
	Members     []UserRefDTO         `json:"members"`
	TaskCount   int                  `json:"task_count"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProjectRefDTO represents a project reference embedded in other resources
type ProjectRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	d := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Progress:    project.Progress,
		DueDate:     project.DueDate,
		CreatedByID: project.CreatedByID,
		Members:     make([]UserRefDTO, 0, len(project.Members)),
		TaskCount:   len(project.Tasks),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	if project.CreatedBy.ID != "" {
		ref := ToUserRefDTO(project.CreatedBy)
		d.CreatedBy = &ref
	}
	for _, member := range project.Members {
		d.Members = append(d.Members, ToUserRefDTO(member.User))
	}
	return d
}

// ToProjectRefDTO converts a Project model to ProjectRefDTO
func ToProjectRefDTO(project models.Project) ProjectRefDTO {
	return ProjectRefDTO{
		ID:   project.ID,
		Name: project.Name,
	}
}

// ToProjectDTOs converts a slice of Project models to ProjectDTOs
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, project := range projects {
		dtos = append(dtos, ToProjectDTO(project))
	}
	return dtos
}
