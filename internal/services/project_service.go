package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/policy"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound           = errors.New("project not found")
	ErrProjectNameRequired       = errors.New("project name is required")
	ErrProjectNameTooLong        = errors.New("project name must be at most 100 characters")
	ErrProjectDescriptionTooLong = errors.New("project description must be at most 1000 characters")
	ErrInvalidProjectStatus      = errors.New("invalid project status")
	ErrInvalidProgress           = errors.New("progress must be between 0 and 100")
	ErrProjectForbidden          = errors.New("user does not have permission to modify this project")
	ErrProjectMemberNotFound     = errors.New("one or more users do not exist")
	ErrMemberAlreadyExists       = errors.New("user is already a member of this project")
	ErrCannotRemoveCreator       = errors.New("the project creator cannot be removed")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	DueDate     *time.Time
	MemberIDs   []string
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	Status     *models.ProjectStatus
	Search     string
	Pagination utils.PaginationParams
}

// UpdateProjectInput represents input for updating a project. Nil fields
// are left unchanged; the Clear flags model an explicit null in the patch.
type UpdateProjectInput struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Status           *models.ProjectStatus
	Progress         *int
	DueDate          *time.Time
	ClearDueDate     bool
}

// Create creates a project. The actor becomes the creator and is always
// part of the member set, which is deduplicated.
func (s *ProjectService) Create(actor policy.Actor, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if utf8.RuneCountInString(name) > constants.MaxProjectNameLength {
		return nil, ErrProjectNameTooLong
	}
	if utf8.RuneCountInString(input.Description) > constants.MaxDescriptionLength {
		return nil, ErrProjectDescriptionTooLong
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}
	if !status.Valid() {
		return nil, ErrInvalidProjectStatus
	}

	memberIDs := uniqueStrings(append([]string{actor.ID}, input.MemberIDs...))
	if err := s.ensureUsersExist(memberIDs); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Status:      status,
		Progress:    0,
		DueDate:     input.DueDate,
		CreatedByID: actor.ID,
	}

	if err := s.projectRepo.Create(project, memberIDs); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindVisibleByID(project.ID, actor.ID)
}

// Get returns a project visible to the actor
func (s *ProjectService) Get(actor policy.Actor, id string) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !policy.CanViewProject(actor, project) {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// List returns the actor's visible projects with filters and pagination
func (s *ProjectService) List(actor policy.Actor, input ListProjectsInput) ([]models.Project, int64, error) {
	filter := repository.ProjectFilter{
		ActorID:    actor.ID,
		Status:     input.Status,
		Search:     input.Search,
		Pagination: input.Pagination,
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// Update applies a partial update to a project. The actor must be able to
// see the project and must be its creator or hold the admin role.
func (s *ProjectService) Update(actor policy.Actor, id string, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !policy.CanUpdateProject(actor, project) {
		return nil, ErrProjectForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		if utf8.RuneCountInString(name) > constants.MaxProjectNameLength {
			return nil, ErrProjectNameTooLong
		}
		project.Name = name
	}
	if input.ClearDescription {
		project.Description = ""
	} else if input.Description != nil {
		if utf8.RuneCountInString(*input.Description) > constants.MaxDescriptionLength {
			return nil, ErrProjectDescriptionTooLong
		}
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > constants.MaxProgress {
			return nil, ErrInvalidProgress
		}
		project.Progress = *input.Progress
	}
	if input.ClearDueDate {
		project.DueDate = nil
	} else if input.DueDate != nil {
		project.DueDate = input.DueDate
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindVisibleByID(project.ID, actor.ID)
}

// Delete removes a project. Only the creator may delete; for anyone else
// the project reads as absent.
func (s *ProjectService) Delete(actor policy.Actor, id string) error {
	project, err := s.projectRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if !policy.CanDeleteProject(actor, project) {
		return ErrProjectNotFound
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// AddMember adds a user to the project's member set. Only the creator may
// manage membership.
func (s *ProjectService) AddMember(actor policy.Actor, id, userID string) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !policy.CanManageProjectMembers(actor, project) {
		return nil, ErrProjectNotFound
	}

	if err := s.ensureUsersExist([]string{userID}); err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMember(id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, ErrMemberAlreadyExists
	}

	if err := s.projectRepo.AddMember(id, userID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.projectRepo.FindVisibleByID(id, actor.ID)
}

// RemoveMember removes a user from the project's member set. The creator
// may never be removed, which keeps the creator-is-member invariant.
func (s *ProjectService) RemoveMember(actor policy.Actor, id, userID string) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !policy.CanManageProjectMembers(actor, project) {
		return nil, ErrProjectNotFound
	}

	if userID == project.CreatedByID {
		return nil, ErrCannotRemoveCreator
	}

	if err := s.projectRepo.RemoveMember(id, userID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	return s.projectRepo.FindVisibleByID(id, actor.ID)
}

// ensureUsersExist verifies that every given user ID resolves to a user
func (s *ProjectService) ensureUsersExist(userIDs []string) error {
	count, err := s.userRepo.CountByIDs(userIDs)
	if err != nil {
		return fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrProjectMemberNotFound
	}
	return nil
}

// uniqueStrings removes duplicate values while preserving order
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
