package repository

import (
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email; the caller lowercases the input
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []string) (int64, error)
}

// ProjectFilter holds filtering options for listing projects. ActorID
// bounds the query to the actor's visibility scope (creator or member).
type ProjectFilter struct {
	ActorID    string
	Status     *models.ProjectStatus
	Search     string
	Pagination utils.PaginationParams
}

// ProjectRepository defines the interface for project data access.
// Lookups fold the visibility scope into the query so that an invisible
// project is indistinguishable from an absent one.
type ProjectRepository interface {
	// Create persists a project together with its member rows atomically
	Create(project *models.Project, memberIDs []string) error

	// FindVisibleByID finds a project the actor created or belongs to
	FindVisibleByID(id, actorID string) (*models.Project, error)

	// List retrieves visible projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete soft deletes a project, its memberships, and detaches its tasks
	Delete(id string) error

	// AddMember inserts a membership row and bumps the project timestamp
	AddMember(projectID, userID string) error

	// RemoveMember deletes a membership row and bumps the project timestamp
	RemoveMember(projectID, userID string) error

	// IsMember reports whether the user is a member of the project
	IsMember(projectID, userID string) (bool, error)
}

// TaskFilter holds filtering options for listing tasks. ActorID bounds the
// query to tasks the actor created or is assigned to.
type TaskFilter struct {
	ActorID    string
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	ProjectID  *string
	Search     string
	Pagination utils.PaginationParams
}

// TaskStatGroup is one bucket of a grouped count.
type TaskStatGroup struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindVisibleByID finds a task the actor created or is assigned to
	FindVisibleByID(id, actorID string) (*models.Task, error)

	// FindByID finds a task by ID regardless of visibility. Used to
	// reload after a mutation that may have moved the task out of the
	// actor's scope.
	FindByID(id string) (*models.Task, error)

	// List retrieves visible tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id string) error

	// CountByStatus groups the actor's visible tasks by status
	CountByStatus(actorID string) ([]TaskStatGroup, error)

	// CountByPriority groups the actor's visible tasks by priority
	CountByPriority(actorID string) ([]TaskStatGroup, error)
}
