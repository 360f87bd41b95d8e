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

// ProjectHandler coordinates project-related HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects visible to the current user.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListProjectsInput{
		Search:     c.Query("search"),
		Pagination: utils.GetPaginationParams(c, constants.DefaultProjectPageSize),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ProjectStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	projects, total, err := h.projectService.List(actor, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects:   dto.ToProjectDTOs(projects),
		Pagination: utils.NewPaginationResponse(input.Pagination, total),
	})
}

// GetProject returns a single project visible to the current user.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	project, err := h.projectService.Get(actor, c.Param("id"))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project owned by the current user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string     `json:"name" binding:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		DueDate     *time.Time `json:"due_date"`
		MemberIDs   []string   `json:"member_ids"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(actor, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
		DueDate:     req.DueDate,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update to a project. The raw body is
// inspected so that an explicit null can be told apart from an omitted
// field.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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

	var input services.UpdateProjectInput
	if raw, ok := body["name"]; ok {
		name, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "name must be a string")
			return
		}
		input.Name = &name
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
		status := models.ProjectStatus(s)
		input.Status = &status
	}
	if raw, ok := body["progress"]; ok {
		n, ok := raw.(float64)
		if !ok {
			apierrors.BadRequest(c, "progress must be a number")
			return
		}
		progress := int(n)
		input.Progress = &progress
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

	project, err := h.projectService.Update(actor, c.Param("id"), input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project owned by the current user.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.projectService.Delete(actor, c.Param("id")); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// AddMember adds a user to the project's member list.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type AddMemberRequest struct {
		UserID string `json:"user_id" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.AddMember(actor, c.Param("id"), req.UserID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// RemoveMember removes a user from the project's member list.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	project, err := h.projectService.RemoveMember(actor, c.Param("id"), c.Param("memberId"))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrProjectNameTooLong),
		errors.Is(err, services.ErrProjectDescriptionTooLong),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrProjectMemberNotFound),
		errors.Is(err, services.ErrCannotRemoveCreator):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMemberAlreadyExists):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
