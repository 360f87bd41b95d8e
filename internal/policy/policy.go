// Package policy holds the access rules for projects and tasks as pure
// predicates. The predicates operate on already-loaded entities and never
// touch the database; callers translate a false result into a not-found or
// forbidden response depending on whether visibility was already
// established.
package policy

import "github.com/taskflow/taskflow-api/internal/models"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID    string
	Roles []string
}

// HasRole reports whether the actor carries the given role.
func (a Actor) HasRole(role models.Role) bool {
	for _, r := range a.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// CanViewProject reports whether the actor may read the project. The member
// set must be loaded on the project.
func CanViewProject(actor Actor, project *models.Project) bool {
	return project.CreatedByID == actor.ID || project.HasMember(actor.ID)
}

// CanUpdateProject reports whether the actor may modify the project.
// Admins may update any project they can see; otherwise only the creator.
func CanUpdateProject(actor Actor, project *models.Project) bool {
	return project.CreatedByID == actor.ID || actor.HasRole(models.RoleAdmin)
}

// CanDeleteProject reports whether the actor may delete the project.
// Deletion is reserved for the creator; the admin role does not override it.
func CanDeleteProject(actor Actor, project *models.Project) bool {
	return project.CreatedByID == actor.ID
}

// CanManageProjectMembers reports whether the actor may add or remove
// project members.
func CanManageProjectMembers(actor Actor, project *models.Project) bool {
	return project.CreatedByID == actor.ID
}

// CanViewTask reports whether the actor may read the task.
func CanViewTask(actor Actor, task *models.Task) bool {
	return task.AssigneeID == actor.ID || task.CreatedByID == actor.ID
}

// CanUpdateTask reports whether the actor may modify the task. Unlike
// projects there is no admin override: the rule is identical to visibility.
func CanUpdateTask(actor Actor, task *models.Task) bool {
	return CanViewTask(actor, task)
}

// CanDeleteTask reports whether the actor may delete the task.
func CanDeleteTask(actor Actor, task *models.Task) bool {
	return task.CreatedByID == actor.ID
}
