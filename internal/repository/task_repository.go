package repository

import (
	"strings"

	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// visibleScope narrows a task query to tasks the actor created or is
// assigned to.
func (r *GormTaskRepository) visibleScope(query *gorm.DB, actorID string) *gorm.DB {
	return query.Where("tasks.assignee_id = ? OR tasks.created_by_id = ?", actorID, actorID)
}

// FindVisibleByID finds a task the actor created or is assigned to
func (r *GormTaskRepository) FindVisibleByID(id, actorID string) (*models.Task, error) {
	var task models.Task
	query := r.visibleScope(r.db.Model(&models.Task{}), actorID).
		Preload("Assignee").
		Preload("CreatedBy").
		Preload("Project").
		Where("tasks.id = ?", id)

	if err := query.First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByID finds a task by ID regardless of visibility
func (r *GormTaskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	query := r.db.
		Preload("Assignee").
		Preload("CreatedBy").
		Preload("Project").
		Where("tasks.id = ?", id)

	if err := query.First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves visible tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.visibleScope(r.db.Model(&models.Task{}), filter.ActorID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("tasks.created_at DESC, tasks.id ASC").
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Assignee").
		Preload("CreatedBy").
		Preload("Project").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task. Associations are omitted so that preloaded
// Assignee/Project structs cannot overwrite a changed foreign key.
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Task{}).Error
}

// CountByStatus groups the actor's visible tasks by status
func (r *GormTaskRepository) CountByStatus(actorID string) ([]TaskStatGroup, error) {
	return r.countGrouped(actorID, "status")
}

// CountByPriority groups the actor's visible tasks by priority
func (r *GormTaskRepository) CountByPriority(actorID string) ([]TaskStatGroup, error) {
	return r.countGrouped(actorID, "priority")
}

func (r *GormTaskRepository) countGrouped(actorID, column string) ([]TaskStatGroup, error) {
	var groups []TaskStatGroup
	err := r.visibleScope(r.db.Model(&models.Task{}), actorID).
		Select("tasks." + column + " AS key, COUNT(tasks.id) AS count").
		Group("tasks." + column).
		Order("tasks." + column + " ASC").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
