package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestRequire(t *testing.T) {
	_, err := Require(context.Background())
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))

	ctx := NewContext(context.Background(), Actor{
		UserID: "5",
		Role:   transition.RoleManager,
		Roles:  []transition.Role{transition.RoleManager, transition.RoleDeveloper},
	})
	a, err := Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5", a.UserID)
	assert.True(t, a.Holds(transition.RoleDeveloper))
	assert.False(t, a.Is(transition.RoleDeveloper))
	assert.Equal(t, transition.Actor{Role: transition.RoleManager, UserID: "5"}, a.Transition())
}

func TestRequireRole(t *testing.T) {
	ctx := NewContext(context.Background(), Actor{UserID: "3", Role: transition.RoleDeveloper})

	_, err := RequireRole(ctx, "only Admin can delete tasks", transition.RoleAdmin)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	assert.Contains(t, err.Error(), "only Admin can delete tasks")

	a, err := RequireRole(ctx, "", transition.RoleAdmin, transition.RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, "3", a.UserID)
}
