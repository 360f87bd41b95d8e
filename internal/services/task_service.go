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
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskTitleRequired      = errors.New("task title is required")
	ErrTaskTitleTooLong       = errors.New("task title must be at most 200 characters")
	ErrTaskDescriptionTooLong = errors.New("task description must be at most 1000 characters")
	ErrAssigneeRequired       = errors.New("assignee is required")
	ErrAssigneeNotFound       = errors.New("assignee does not exist")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
	ErrInvalidTaskPriority    = errors.New("invalid task priority")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  string
	ProjectID   *string
	Tags        []string
	DueDate     *time.Time
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	ProjectID  *string
	Search     string
	Pagination utils.PaginationParams
}

// UpdateTaskInput represents input for updating a task. Nil fields are
// left unchanged; the Clear flags model an explicit null in the patch.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *models.TaskStatus
	Priority         *models.TaskPriority
	AssigneeID       *string
	ProjectID        *string
	ClearProject     bool
	Tags             []string
	DueDate          *time.Time
	ClearDueDate     bool
}

// TaskStats holds grouped counts over the actor's visible tasks
type TaskStats struct {
	StatusStats   []repository.TaskStatGroup
	PriorityStats []repository.TaskStatGroup
}

// Create creates a task. The actor becomes the creator; an assignee is
// mandatory.
func (s *TaskService) Create(actor policy.Actor, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.MaxTaskTitleLength {
		return nil, ErrTaskTitleTooLong
	}
	if utf8.RuneCountInString(input.Description) > constants.MaxDescriptionLength {
		return nil, ErrTaskDescriptionTooLong
	}
	if input.AssigneeID == "" {
		return nil, ErrAssigneeRequired
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	if err := s.ensureUserExists(input.AssigneeID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		ProjectID:   input.ProjectID,
		Tags:        input.Tags,
		DueDate:     input.DueDate,
		CreatedByID: actor.ID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindVisibleByID(task.ID, actor.ID)
}

// Get returns a task visible to the actor
func (s *TaskService) Get(actor policy.Actor, id string) (*models.Task, error) {
	task, err := s.taskRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanViewTask(actor, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// List returns the actor's visible tasks with filters and pagination
func (s *TaskService) List(actor policy.Actor, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		ActorID:    actor.ID,
		Status:     input.Status,
		Priority:   input.Priority,
		ProjectID:  input.ProjectID,
		Search:     input.Search,
		Pagination: input.Pagination,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// Update applies a partial update to a task. The mutation rule matches the
// visibility rule (assignee or creator), so a failed check reads as absent.
func (s *TaskService) Update(actor policy.Actor, id string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanUpdateTask(actor, task) {
		return nil, ErrTaskNotFound
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTaskTitleRequired
		}
		if utf8.RuneCountInString(title) > constants.MaxTaskTitleLength {
			return nil, ErrTaskTitleTooLong
		}
		task.Title = title
	}
	if input.ClearDescription {
		task.Description = ""
	} else if input.Description != nil {
		if utf8.RuneCountInString(*input.Description) > constants.MaxDescriptionLength {
			return nil, ErrTaskDescriptionTooLong
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			return nil, ErrAssigneeRequired
		}
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = *input.AssigneeID
	}
	if input.ClearProject {
		task.ProjectID = nil
	} else if input.ProjectID != nil {
		task.ProjectID = input.ProjectID
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// The reload is unscoped: an assignee who reassigns the task away
	// loses visibility, but the mutation itself succeeded and the caller
	// still gets the persisted result.
	return s.taskRepo.FindByID(task.ID)
}

// Delete removes a task. Only the creator may delete; for anyone else the
// task reads as absent.
func (s *TaskService) Delete(actor policy.Actor, id string) error {
	task, err := s.taskRepo.FindVisibleByID(id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanDeleteTask(actor, task) {
		return ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Stats returns counts grouped by status and by priority over the actor's
// visibility scope.
func (s *TaskService) Stats(actor policy.Actor) (*TaskStats, error) {
	statusStats, err := s.taskRepo.CountByStatus(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	priorityStats, err := s.taskRepo.CountByPriority(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by priority: %w", err)
	}

	return &TaskStats{
		StatusStats:   statusStats,
		PriorityStats: priorityStats,
	}, nil
}

// ensureUserExists verifies that the given user ID resolves to a user
func (s *TaskService) ensureUserExists(userID string) error {
	count, err := s.userRepo.CountByIDs([]string{userID})
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	if count != 1 {
		return ErrAssigneeNotFound
	}
	return nil
}
