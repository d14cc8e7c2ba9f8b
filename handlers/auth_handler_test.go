package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crmhub/models"
)

func TestNewRegisteredUserAlwaysStartsAsEmployee(t *testing.T) {
	now := ts("2026-05-01T09:00:00Z")
	user := newRegisteredUser("  Jordan Reyes ", "jordan@example.com", "hashed", " Sales ", now)

	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.Equal(t, "Jordan Reyes", user.Name)
	assert.Equal(t, "jordan@example.com", user.Email)
	assert.Equal(t, "Sales", user.Position)
	assert.Equal(t, now, user.CreatedAt)
	assert.Equal(t, now, user.UpdatedAt)
	assert.False(t, user.ID.IsZero())
}

func TestNormalizeRoleClampsUnknownInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"admin", models.RoleAdmin},
		{" Manager ", models.RoleManager},
		{"employee", models.RoleEmployee},
		{"superuser", models.RoleEmployee},
		{"", models.RoleEmployee},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeRole(tt.in), "input %q", tt.in)
	}
}
