// policy/policy.go
//
// Centralized role policy. All query scoping and delete/write gates live
// here instead of being repeated inline in every handler, so the client,
// project and task handlers cannot drift apart.
package policy

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crmhub/models"
)

// Resource collections the policy knows about.
const (
	ResourceClients       = "clients"
	ResourceProjects      = "projects"
	ResourceTasks         = "tasks"
	ResourceAttendance    = "attendance"
	ResourceNotifications = "notifications"
	ResourceUsers         = "users"
)

var roleRank = map[string]int{
	models.RoleEmployee: 1,
	models.RoleManager:  2,
	models.RoleAdmin:    3,
}

// RoleAtLeast reports whether role meets the given floor. Unknown roles
// never pass.
func RoleAtLeast(role, floor string) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	f, ok := roleRank[floor]
	if !ok {
		return false
	}
	return r >= f
}

// ScopeFilter returns the base Mongo filter limiting what the acting user
// may read from the given resource. Managers and admins read everything;
// employees see only rows they own (or, for tasks, are assigned to).
// Notifications are always a personal inbox regardless of role.
func ScopeFilter(resource, role string, userID primitive.ObjectID) bson.M {
	if resource == ResourceNotifications {
		return bson.M{"user": userID}
	}

	if role == models.RoleManager || role == models.RoleAdmin {
		return bson.M{}
	}

	switch resource {
	case ResourceClients, ResourceProjects, ResourceAttendance:
		return bson.M{"user": userID}
	case ResourceTasks:
		return bson.M{"$or": []bson.M{
			{"user": userID},
			{"assignee": userID},
		}}
	default:
		// Unknown resources stay owner-scoped rather than wide open
		return bson.M{"user": userID}
	}
}

// CanWrite reports whether the acting user may update a document of the
// given resource. isOwner refers to the document's creator field.
func CanWrite(resource, role string, isOwner bool) bool {
	if role == models.RoleManager || role == models.RoleAdmin {
		return true
	}
	return isOwner
}

// CanDelete reports whether the acting user may hard-delete a document.
// Admins delete anywhere. Managers never hard-delete. Employees may remove
// only projects, tasks and notifications they created.
func CanDelete(resource, role string, isOwner bool) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return false
	}
	switch resource {
	case ResourceProjects, ResourceTasks, ResourceNotifications:
		return isOwner
	}
	return false
}

// CanDeleteUser gates user removal: admin only, and never the admin's own
// account.
func CanDeleteUser(role string, actorID, targetID primitive.ObjectID) (allowed bool, selfDelete bool) {
	if role != models.RoleAdmin {
		return false, false
	}
	if actorID == targetID {
		return false, true
	}
	return true, false
}
