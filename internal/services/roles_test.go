package services

import (
	"testing"

	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanInvite(t *testing.T) {
	tests := []struct {
		name      string
		inviter   int
		requested int
		want      bool
	}{
		{"admin invites manager", models.RoleAdmin, models.RoleManager, true},
		{"admin invites member", models.RoleAdmin, models.RoleMember, true},
		{"admin invites viewer", models.RoleAdmin, models.RoleViewer, true},
		{"admin cannot invite admin", models.RoleAdmin, models.RoleAdmin, false},
		{"manager cannot invite admin", models.RoleManager, models.RoleAdmin, false},
		{"manager cannot invite manager", models.RoleManager, models.RoleManager, false},
		{"manager invites member", models.RoleManager, models.RoleMember, true},
		{"member invites viewer", models.RoleMember, models.RoleViewer, true},
		{"member cannot invite member", models.RoleMember, models.RoleMember, false},
		{"member cannot invite manager", models.RoleMember, models.RoleManager, false},
		{"viewer cannot invite admin", models.RoleViewer, models.RoleAdmin, false},
		{"viewer cannot invite manager", models.RoleViewer, models.RoleManager, false},
		{"viewer cannot invite member", models.RoleViewer, models.RoleMember, false},
		{"viewer cannot invite viewer", models.RoleViewer, models.RoleViewer, false},
		{"undefined role cannot invite", 4, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanInvite(tt.inviter, tt.requested))
		})
	}
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(models.RoleAdmin, models.RoleManager))
	assert.True(t, HasRole(models.RoleManager, models.RoleManager))
	assert.False(t, HasRole(models.RoleMember, models.RoleManager))
	assert.False(t, HasRole(models.RoleViewer, models.RoleMember))
}
