package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crmhub/models"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(models.RoleAdmin, models.RoleEmployee))
	assert.True(t, RoleAtLeast(models.RoleManager, models.RoleManager))
	assert.False(t, RoleAtLeast(models.RoleEmployee, models.RoleManager))
	assert.False(t, RoleAtLeast("intern", models.RoleEmployee))
	assert.False(t, RoleAtLeast(models.RoleAdmin, "superadmin"))
}

func TestScopeFilterEmployee(t *testing.T) {
	userID := primitive.NewObjectID()

	for _, resource := range []string{ResourceClients, ResourceProjects, ResourceAttendance} {
		filter := ScopeFilter(resource, models.RoleEmployee, userID)
		assert.Equal(t, bson.M{"user": userID}, filter, resource)
	}

	taskFilter := ScopeFilter(ResourceTasks, models.RoleEmployee, userID)
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"user": userID},
		{"assignee": userID},
	}}, taskFilter)
}

func TestScopeFilterManagerAndAdmin(t *testing.T) {
	userID := primitive.NewObjectID()

	for _, role := range []string{models.RoleManager, models.RoleAdmin} {
		for _, resource := range []string{ResourceClients, ResourceProjects, ResourceTasks, ResourceAttendance} {
			filter := ScopeFilter(resource, role, userID)
			assert.Empty(t, filter, "%s/%s should be unscoped", role, resource)
		}
	}
}

func TestScopeFilterNotificationsAlwaysPersonal(t *testing.T) {
	userID := primitive.NewObjectID()

	for _, role := range []string{models.RoleEmployee, models.RoleManager, models.RoleAdmin} {
		filter := ScopeFilter(ResourceNotifications, role, userID)
		assert.Equal(t, bson.M{"user": userID}, filter, role)
	}
}

func TestScopeFilterUnknownResourceStaysScoped(t *testing.T) {
	userID := primitive.NewObjectID()
	filter := ScopeFilter("invoices", models.RoleEmployee, userID)
	assert.Equal(t, bson.M{"user": userID}, filter)
}

func TestCanWrite(t *testing.T) {
	assert.True(t, CanWrite(ResourceClients, models.RoleManager, false))
	assert.True(t, CanWrite(ResourceTasks, models.RoleAdmin, false))
	assert.True(t, CanWrite(ResourceProjects, models.RoleEmployee, true))
	assert.False(t, CanWrite(ResourceProjects, models.RoleEmployee, false))
}

func TestCanDelete(t *testing.T) {
	// Admin may delete anything
	assert.True(t, CanDelete(ResourceClients, models.RoleAdmin, false))
	assert.True(t, CanDelete(ResourceAttendance, models.RoleAdmin, false))

	// Managers never hard-delete
	assert.False(t, CanDelete(ResourceProjects, models.RoleManager, true))
	assert.False(t, CanDelete(ResourceClients, models.RoleManager, false))

	// Employees may only remove their own projects, tasks and notifications
	assert.True(t, CanDelete(ResourceProjects, models.RoleEmployee, true))
	assert.True(t, CanDelete(ResourceTasks, models.RoleEmployee, true))
	assert.True(t, CanDelete(ResourceNotifications, models.RoleEmployee, true))
	assert.False(t, CanDelete(ResourceProjects, models.RoleEmployee, false))
	assert.False(t, CanDelete(ResourceClients, models.RoleEmployee, true))
	assert.False(t, CanDelete(ResourceAttendance, models.RoleEmployee, true))
}

func TestCanDeleteUser(t *testing.T) {
	admin := primitive.NewObjectID()
	other := primitive.NewObjectID()

	allowed, selfDelete := CanDeleteUser(models.RoleAdmin, admin, other)
	assert.True(t, allowed)
	assert.False(t, selfDelete)

	allowed, selfDelete = CanDeleteUser(models.RoleAdmin, admin, admin)
	assert.False(t, allowed)
	assert.True(t, selfDelete)

	allowed, selfDelete = CanDeleteUser(models.RoleManager, admin, other)
	assert.False(t, allowed)
	assert.False(t, selfDelete)
}
