package repository

import (
	"strings"
	"time"

	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create persists a project together with its member rows atomically. The
// caller guarantees the creator is present in memberIDs.
func (r *GormProjectRepository) Create(project *models.Project, memberIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		members := make([]models.ProjectMember, len(memberIDs))
		for i, userID := range memberIDs {
			members[i] = models.ProjectMember{
				ProjectID: project.ID,
				UserID:    userID,
			}
		}

		return tx.Create(&members).Error
	})
}

// visibleScope narrows a project query to projects the actor created or
// belongs to, so an invisible project reads as absent.
func (r *GormProjectRepository) visibleScope(query *gorm.DB, actorID string) *gorm.DB {
	memberSub := r.db.Model(&models.ProjectMember{}).
		Select("1").
		Where("project_members.project_id = projects.id").
		Where("project_members.user_id = ?", actorID)

	return query.Where("projects.created_by_id = ? OR EXISTS (?)", actorID, memberSub)
}

// FindVisibleByID finds a project the actor created or belongs to
func (r *GormProjectRepository) FindVisibleByID(id, actorID string) (*models.Project, error) {
	var project models.Project
	query := r.visibleScope(r.db.Model(&models.Project{}), actorID).
		Preload("CreatedBy").
		Preload("Members.User").
		Preload("Tasks").
		Where("projects.id = ?", id)

	if err := query.First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves visible projects with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.visibleScope(r.db.Model(&models.Project{}), filter.ActorID)

	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(projects.name) LIKE ? OR LOWER(projects.description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("projects.created_at DESC, projects.id ASC").
		Scopes(database.Paginate(filter.Pagination)).
		Preload("CreatedBy").
		Preload("Members.User").
		Preload("Tasks").
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project. Associations are omitted so that preloaded
// relations are never written back alongside the column changes.
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// Delete soft deletes a project, its memberships, and detaches its tasks
func (r *GormProjectRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		// Tasks outlive their project; only the association is dropped.
		if err := tx.Model(&models.Task{}).
			Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Project{}).Error
	})
}

// AddMember inserts a membership row and bumps the project timestamp
func (r *GormProjectRepository) AddMember(projectID, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		member := models.ProjectMember{
			ProjectID: projectID,
			UserID:    userID,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			Update("updated_at", time.Now()).Error
	})
}

// RemoveMember deletes a membership row and bumps the project timestamp
func (r *GormProjectRepository) RemoveMember(projectID, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{}).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			Update("updated_at", time.Now()).Error
	})
}

// IsMember reports whether the user is a member of the project
func (r *GormProjectRepository) IsMember(projectID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}
