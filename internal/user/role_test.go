package user

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazz187/taskboard/internal/transition"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in     string
		want   transition.Role
		wantOK bool
	}{
		{in: "admin", want: transition.RoleAdmin, wantOK: true},
		{in: " ADMIN ", want: transition.RoleAdmin, wantOK: true},
		{in: "Manager", want: transition.RoleManager, wantOK: true},
		{in: "UserRole.DEVELOPER", want: transition.RoleDeveloper, wantOK: true},
		{in: "userrole.manager", want: transition.RoleManager, wantOK: true},
		{in: "dev", want: transition.RoleDeveloper, wantOK: true},
		{in: "DeveloperRole", want: transition.RoleDeveloper, wantOK: true},
		{in: "owner", wantOK: false},
		{in: "", wantOK: false},
		{in: "UserRole.", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeRole(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRoles(t *testing.T) {
	got, rejected := NormalizeRoles([]string{"Developer", "UserRole.DEVELOPER", "manager", "owner", "dev"})
	assert.Equal(t, []transition.Role{transition.RoleDeveloper, transition.RoleManager}, got)
	assert.Equal(t, []string{"owner"}, rejected)

	got, rejected = NormalizeRoles(nil)
	assert.Empty(t, got)
	assert.Empty(t, rejected)
}

func TestHighestRole(t *testing.T) {
	assert.Equal(t, transition.RoleAdmin, HighestRole([]transition.Role{transition.RoleDeveloper, transition.RoleAdmin, transition.RoleManager}))
	assert.Equal(t, transition.RoleManager, HighestRole([]transition.Role{transition.RoleDeveloper, transition.RoleManager}))
	assert.Equal(t, transition.Role(""), HighestRole(nil))
}
