package dashboard

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/employee"
	employeerepo "github.com/kazz187/taskboard/internal/employee/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/transition"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	tasks := taskrepo.NewYAMLRepository(s)
	employees := employeerepo.NewYAMLRepository(s)
	users := userrepo.NewYAMLRepository(s)
	_, err = employee.BootstrapAdmin(ctx, employees, users, "admin@ust.com", "admin-password")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	for i, tk := range []*task.Task{
		{Status: transition.StatusTodo, CreatedBy: "2", AssignedTo: "3", ExpectedClosure: &past},
		{Status: transition.StatusInProgress, CreatedBy: "2", AssignedTo: "3"},
		{Status: transition.StatusDone, CreatedBy: "2", AssignedTo: "3", ExpectedClosure: &past},
		{Status: transition.StatusReview, CreatedBy: "5"},
	} {
		tk.ID = string(rune('a' + i))
		tk.Title = "task"
		tk.Priority = task.PriorityMedium
		require.NoError(t, tasks.Create(ctx, tk))
	}

	srv := NewServer(tasks, employees, users)
	srv.now = func() time.Time { return now }

	counts := func(resp *taskboardv1.GetDashboardResponse) map[string]int32 {
		m := map[string]int32{}
		for _, c := range resp.Statuses {
			m[c.Status] = c.Count
		}
		return m
	}

	t.Run("developer", func(t *testing.T) {
		ctx := actor.NewContext(ctx, actor.Actor{UserID: "3", Role: transition.RoleDeveloper})
		resp, err := srv.GetDashboard(ctx, connect.NewRequest(&taskboardv1.GetDashboardRequest{}))
		require.NoError(t, err)
		assert.Equal(t, "developer", resp.Msg.Role)
		assert.EqualValues(t, 3, resp.Msg.Total)
		assert.EqualValues(t, 1, resp.Msg.Overdue)
		assert.Equal(t, map[string]int32{"todo": 1, "inprogress": 1, "review": 0, "done": 1}, counts(resp.Msg))
		assert.Equal(t, "To Do", resp.Msg.Statuses[0].Label)
		assert.Nil(t, resp.Msg.Employees)
		assert.Nil(t, resp.Msg.Users)
	})

	t.Run("admin", func(t *testing.T) {
		ctx := actor.NewContext(ctx, actor.Actor{UserID: "1", Role: transition.RoleAdmin})
		resp, err := srv.GetDashboard(ctx, connect.NewRequest(&taskboardv1.GetDashboardRequest{}))
		require.NoError(t, err)
		assert.EqualValues(t, 4, resp.Msg.Total)
		assert.Equal(t, map[string]int32{"todo": 1, "inprogress": 1, "review": 1, "done": 1}, counts(resp.Msg))
		require.NotNil(t, resp.Msg.Employees)
		assert.EqualValues(t, 1, *resp.Msg.Employees)
		assert.EqualValues(t, 1, *resp.Msg.Users)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := srv.GetDashboard(ctx, connect.NewRequest(&taskboardv1.GetDashboardRequest{}))
		assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))
	})
}
