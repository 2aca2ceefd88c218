package task_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/activity"
	activityrepo "github.com/kazz187/taskboard/internal/activity/repositoryimpl"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/employee"
	employeerepo "github.com/kazz187/taskboard/internal/employee/repositoryimpl"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

// Ids handed out by the fixture: 1 admin, 2 manager (creator), 3 developer,
// 4 manager (reviewer), 5 unrelated manager, 6 developer only.
type fixture struct {
	srv      *task.Server
	users    user.Repository
	activity activity.Repository
	bus      *eventbus.Bus
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	employees := employeerepo.NewYAMLRepository(s)
	users := userrepo.NewYAMLRepository(s)
	_, err = employee.BootstrapAdmin(ctx, employees, users, "admin@ust.com", "admin-password")
	require.NoError(t, err)

	empSrv := employee.NewServer(employees, users, "password123", "")
	userSrv := user.NewServer(users)
	admin := as("1", transition.RoleAdmin)
	for _, p := range []struct{ name, email string }{
		{"Mia", "mia@ust.com"},
		{"Dev", "dev@ust.com"},
		{"Rev", "rev@ust.com"},
		{"Stranger", "stranger@ust.com"},
		{"Newbie", "newbie@ust.com"},
	} {
		_, err := empSrv.CreateEmployee(admin, connect.NewRequest(&taskboardv1.CreateEmployeeRequest{
			Name: p.name, Email: p.email, Designation: "Engineer", ManagerID: "1",
		}))
		require.NoError(t, err)
	}
	for _, id := range []string{"2", "4", "5"} {
		require.NoError(t, userSrv.GrantRole(ctx, id, transition.RoleManager))
	}

	f := fixture{
		users:    users,
		activity: activityrepo.NewYAMLRepository(s),
		bus:      eventbus.New(),
	}
	rec := activity.NewRecorder(f.activity)
	f.srv = task.NewServer(taskrepo.NewYAMLRepository(s), transition.Policy{}, userSrv, employees, rec, f.bus)
	f.srv.PurgeOnDelete(rec)
	return f
}

func as(id string, role transition.Role) context.Context {
	return actor.NewContext(context.Background(), actor.Actor{UserID: id, Role: role, Roles: []transition.Role{role}})
}

var (
	admin    = func() context.Context { return as("1", transition.RoleAdmin) }
	creator  = func() context.Context { return as("2", transition.RoleManager) }
	dev      = func() context.Context { return as("3", transition.RoleDeveloper) }
	reviewer = func() context.Context { return as("4", transition.RoleManager) }
	stranger = func() context.Context { return as("5", transition.RoleManager) }
)

func (f fixture) newTask(t *testing.T) *taskboardv1.Task {
	t.Helper()
	resp, err := f.srv.CreateTask(creator(), connect.NewRequest(&taskboardv1.CreateTaskRequest{
		Title: "Fix login", AssignedTo: "3", Reviewer: "4",
	}))
	require.NoError(t, err)
	return resp.Msg.Task
}

func (f fixture) move(ctx context.Context, id string, to transition.Status) (*taskboardv1.MoveTaskResponse, error) {
	resp, err := f.srv.MoveTask(ctx, connect.NewRequest(&taskboardv1.MoveTaskRequest{ID: id, Status: string(to)}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (f fixture) kinds(t *testing.T, taskID string) []activity.Kind {
	t.Helper()
	list, _, err := f.activity.List(context.Background(), taskID, 0, 0)
	require.NoError(t, err)
	var kinds []activity.Kind
	for _, a := range list {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}

func errMessage(t *testing.T, err error) string {
	t.Helper()
	var ce *cerr.Error
	require.True(t, errors.As(err, &ce), "not a cerr error: %v", err)
	return ce.Msg
}

func TestCreateTask(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	assert.Equal(t, "todo", tk.Status)
	assert.Equal(t, "medium", tk.Priority)
	assert.Equal(t, "2", tk.CreatedBy)
	assert.Equal(t, "2", tk.AssignedBy)
	assert.NotNil(t, tk.AssignedAt)
	assert.Nil(t, tk.ActualClosure)
	assert.Equal(t, []activity.Kind{activity.KindCreated}, f.kinds(t, tk.ID))

	list, _, err := f.activity.List(context.Background(), tk.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "task created, assigned to Dev", list[0].Message)

	tests := []struct {
		name     string
		ctx      context.Context
		req      *taskboardv1.CreateTaskRequest
		wantCode cerr.Code
	}{
		{name: "developer", ctx: dev(), req: &taskboardv1.CreateTaskRequest{Title: "x"}, wantCode: cerr.PermissionDenied},
		{name: "blank title", ctx: creator(), req: &taskboardv1.CreateTaskRequest{Title: " "}, wantCode: cerr.InvalidArgument},
		{name: "bad priority", ctx: creator(), req: &taskboardv1.CreateTaskRequest{Title: "x", Priority: "urgent"}, wantCode: cerr.InvalidArgument},
		{name: "unknown assignee", ctx: creator(), req: &taskboardv1.CreateTaskRequest{Title: "x", AssignedTo: "99"}, wantCode: cerr.InvalidArgument},
		{name: "unknown reviewer", ctx: admin(), req: &taskboardv1.CreateTaskRequest{Title: "x", Reviewer: "99"}, wantCode: cerr.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.srv.CreateTask(tt.ctx, connect.NewRequest(tt.req))
			assert.True(t, cerr.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestCreateTaskGrantsRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.srv.CreateTask(creator(), connect.NewRequest(&taskboardv1.CreateTaskRequest{
		Title: "Review docs", AssignedTo: "2", Reviewer: "6", Priority: "low",
	}))
	require.NoError(t, err)

	u, err := f.users.Get(ctx, "6")
	require.NoError(t, err)
	assert.True(t, u.HasRole(transition.RoleManager))
	assert.True(t, u.HasRole(transition.RoleDeveloper))

	u, err = f.users.Get(ctx, "2")
	require.NoError(t, err)
	assert.True(t, u.HasRole(transition.RoleDeveloper))
}

func TestListTasksIsRoleScoped(t *testing.T) {
	f := setup(t)
	f.newTask(t)
	_, err := f.srv.CreateTask(admin(), connect.NewRequest(&taskboardv1.CreateTaskRequest{Title: "Admin chore", Priority: "high"}))
	require.NoError(t, err)

	tests := []struct {
		name string
		ctx  context.Context
		req  *taskboardv1.ListTasksRequest
		want []string
	}{
		{name: "admin sees all", ctx: admin(), req: &taskboardv1.ListTasksRequest{}, want: []string{"Admin chore", "Fix login"}},
		{name: "creator", ctx: creator(), req: &taskboardv1.ListTasksRequest{}, want: []string{"Fix login"}},
		{name: "reviewer", ctx: reviewer(), req: &taskboardv1.ListTasksRequest{}, want: []string{"Fix login"}},
		{name: "assignee", ctx: dev(), req: &taskboardv1.ListTasksRequest{}, want: []string{"Fix login"}},
		{name: "stranger", ctx: stranger(), req: &taskboardv1.ListTasksRequest{}},
		{name: "priority filter", ctx: admin(), req: &taskboardv1.ListTasksRequest{Priority: "high"}, want: []string{"Admin chore"}},
		{name: "assignee filter", ctx: admin(), req: &taskboardv1.ListTasksRequest{AssignedTo: "3"}, want: []string{"Fix login"}},
		{name: "status filter", ctx: admin(), req: &taskboardv1.ListTasksRequest{Status: "done"}},
		{name: "pagination", ctx: admin(), req: &taskboardv1.ListTasksRequest{Limit: 1, Offset: 1}, want: []string{"Fix login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.srv.ListTasks(tt.ctx, connect.NewRequest(tt.req))
			require.NoError(t, err)
			var titles []string
			for _, tk := range resp.Msg.Tasks {
				titles = append(titles, tk.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	_, err = f.srv.ListTasks(admin(), connect.NewRequest(&taskboardv1.ListTasksRequest{Status: "IN_PROGRESS"}))
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestGetTaskVisibility(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	_, err := f.srv.GetTask(dev(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: tk.ID}))
	require.NoError(t, err)

	_, err = f.srv.GetTask(stranger(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: tk.ID}))
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	_, err = f.srv.GetTask(admin(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: "missing"}))
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestMoveTaskLifecycle(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	resp, err := f.move(dev(), tk.ID, transition.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, "inprogress", resp.Task.Status)
	assert.Equal(t, "3", resp.Task.UpdatedBy)
	assert.True(t, resp.Verdict.Allowed)

	_, err = f.move(creator(), tk.ID, transition.StatusReview)
	require.True(t, cerr.IsCode(err, cerr.FailedPrecondition))
	assert.Equal(t, transition.ReasonManagerTransition, errMessage(t, err))

	_, err = f.move(dev(), tk.ID, transition.StatusReview)
	require.NoError(t, err)

	_, err = f.move(dev(), tk.ID, transition.StatusDone)
	require.True(t, cerr.IsCode(err, cerr.FailedPrecondition))
	assert.Equal(t, transition.ReasonDeveloper, errMessage(t, err))

	resp, err = f.move(reviewer(), tk.ID, transition.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Task.Status)
	require.NotNil(t, resp.Task.ActualClosure)

	resp, err = f.move(admin(), tk.ID, transition.StatusTodo)
	require.NoError(t, err)
	assert.Nil(t, resp.Task.ActualClosure)

	assert.Equal(t, []activity.Kind{
		activity.KindCreated,
		activity.KindStatusChanged,
		activity.KindStatusChanged,
		activity.KindStatusChanged,
		activity.KindStatusChanged,
	}, f.kinds(t, tk.ID))
}

func TestMoveTaskRejections(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	_, err := f.move(dev(), tk.ID, "archived")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	_, err = f.move(stranger(), tk.ID, transition.StatusInProgress)
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	_, err = f.move(context.Background(), tk.ID, transition.StatusInProgress)
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))

	_, err = f.move(admin(), "missing", transition.StatusInProgress)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestMoveTaskToSameStatusIsNoop(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	resp, err := f.move(creator(), tk.ID, transition.StatusTodo)
	require.NoError(t, err)
	assert.True(t, resp.Verdict.Allowed)
	assert.True(t, tk.UpdatedAt.Equal(resp.Task.UpdatedAt))
	assert.Equal(t, []activity.Kind{activity.KindCreated}, f.kinds(t, tk.ID))
}

func TestMoveTaskPublishesEvent(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)
	subID, ch := f.bus.Subscribe(4)
	defer f.bus.Unsubscribe(subID)

	_, err := f.move(dev(), tk.ID, transition.StatusInProgress)
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, taskboardv1.EventTypeTaskStatusChanged, ev.Type)
	assert.Equal(t, tk.ID, ev.ResourceID)
	assert.Equal(t, "todo", ev.Metadata["from"])
	assert.Equal(t, "inprogress", ev.Metadata["to"])
	assert.Equal(t, "3", ev.Metadata["assigned_to"])
}

func TestConcurrentMovesAreSerialized(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	targets := []transition.Status{transition.StatusInProgress, transition.StatusReview, transition.StatusDone, transition.StatusTodo}
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.move(admin(), tk.ID, targets[i%len(targets)])
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	kinds := f.kinds(t, tk.ID)
	moves := 0
	for _, k := range kinds {
		if k == activity.KindStatusChanged {
			moves++
		}
	}
	assert.LessOrEqual(t, moves, 20)
	assert.Positive(t, moves)

	got, err := f.srv.GetTask(admin(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: tk.ID}))
	require.NoError(t, err)
	assert.True(t, transition.Status(got.Msg.Task.Status).Valid())
	assert.Equal(t, got.Msg.Task.Status == "done", got.Msg.Task.ActualClosure != nil)
}

func TestCheckTransition(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	tests := []struct {
		name string
		ctx  context.Context
		to   transition.Status
		want *taskboardv1.Verdict
	}{
		{name: "developer allowed", ctx: dev(), to: transition.StatusInProgress, want: &taskboardv1.Verdict{Allowed: true}},
		{name: "developer denied", ctx: dev(), to: transition.StatusDone, want: &taskboardv1.Verdict{Reason: transition.ReasonDeveloper}},
		{name: "same status", ctx: dev(), to: transition.StatusTodo, want: &taskboardv1.Verdict{Allowed: true}},
		{name: "admin", ctx: admin(), to: transition.StatusDone, want: &taskboardv1.Verdict{Allowed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.srv.CheckTransition(tt.ctx, connect.NewRequest(&taskboardv1.CheckTransitionRequest{ID: tk.ID, Status: string(tt.to)}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Msg.Verdict)
		})
	}

	got, err := f.srv.GetTask(admin(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: tk.ID}))
	require.NoError(t, err)
	assert.Equal(t, "todo", got.Msg.Task.Status)
}

func TestUpdateTask(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	title := "Fix login flow"
	assignee := "6"
	resp, err := f.srv.UpdateTask(creator(), connect.NewRequest(&taskboardv1.UpdateTaskRequest{ID: tk.ID, Title: &title, AssignedTo: &assignee}))
	require.NoError(t, err)
	assert.Equal(t, "Fix login flow", resp.Msg.Task.Title)
	assert.Equal(t, "6", resp.Msg.Task.AssignedTo)
	assert.Equal(t, "2", resp.Msg.Task.AssignedBy)

	list, _, err := f.activity.List(context.Background(), tk.ID, 0, 0)
	require.NoError(t, err)
	last := list[len(list)-1]
	assert.Equal(t, activity.KindUpdated, last.Kind)
	assert.Equal(t, "assigned to Newbie", last.Message)
	assert.Contains(t, last.Diff, "+assigned_to: \"6\"")

	_, err = f.srv.UpdateTask(dev(), connect.NewRequest(&taskboardv1.UpdateTaskRequest{ID: tk.ID, Title: &title}))
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	_, err = f.srv.UpdateTask(stranger(), connect.NewRequest(&taskboardv1.UpdateTaskRequest{ID: tk.ID, Title: &title}))
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	empty := ""
	_, err = f.srv.UpdateTask(creator(), connect.NewRequest(&taskboardv1.UpdateTaskRequest{ID: tk.ID, Title: &empty}))
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	resp, err = f.srv.UpdateTask(creator(), connect.NewRequest(&taskboardv1.UpdateTaskRequest{ID: tk.ID, AssignedTo: &empty}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Task.AssignedTo)
	assert.Empty(t, resp.Msg.Task.AssignedBy)
	assert.Nil(t, resp.Msg.Task.AssignedAt)
}

func TestUpdateTaskPriority(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)

	tests := []struct {
		name     string
		ctx      context.Context
		priority string
		wantCode cerr.Code
		wantMsg  string
	}{
		{name: "reviewer", ctx: reviewer(), priority: "high"},
		{name: "creator is not reviewer", ctx: creator(), priority: "low", wantCode: cerr.PermissionDenied, wantMsg: "you are not the manager of this task"},
		{name: "developer", ctx: dev(), priority: "low", wantCode: cerr.PermissionDenied},
		{name: "admin", ctx: admin(), priority: "low"},
		{name: "bad priority", ctx: admin(), priority: "urgent", wantCode: cerr.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.srv.UpdateTaskPriority(tt.ctx, connect.NewRequest(&taskboardv1.UpdateTaskPriorityRequest{ID: tk.ID, Priority: tt.priority}))
			if tt.wantCode != cerr.OK {
				require.True(t, cerr.IsCode(err, tt.wantCode), "got %v", err)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, errMessage(t, err))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.priority, resp.Msg.Task.Priority)
		})
	}
	assert.Contains(t, f.kinds(t, tk.ID), activity.KindPriorityChanged)
}

func TestDeleteTask(t *testing.T) {
	f := setup(t)
	tk := f.newTask(t)
	subID, ch := f.bus.Subscribe(4)
	defer f.bus.Unsubscribe(subID)

	_, err := f.srv.DeleteTask(creator(), connect.NewRequest(&taskboardv1.DeleteTaskRequest{ID: tk.ID}))
	require.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	assert.Equal(t, "only Admin can delete tasks", errMessage(t, err))

	_, err = f.srv.DeleteTask(admin(), connect.NewRequest(&taskboardv1.DeleteTaskRequest{ID: tk.ID}))
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, taskboardv1.EventTypeTaskDeleted, ev.Type)
		assert.Equal(t, tk.ID, ev.ResourceID)
	case <-time.After(time.Second):
		t.Fatal("no delete event")
	}

	_, err = f.srv.GetTask(admin(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: tk.ID}))
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

type purger struct {
	mu     sync.Mutex
	purged []string
	err    error
}

func (p *purger) PurgeTask(_ context.Context, taskID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.purged = append(p.purged, taskID)
	return nil
}

func TestDeleteTaskPurgesUnderEventLoad(t *testing.T) {
	f := setup(t)
	spy := &purger{}
	f.srv.PurgeOnDelete(spy)
	first, second := f.newTask(t), f.newTask(t)
	require.NotEmpty(t, f.kinds(t, first.ID))

	// A subscriber that never drains its buffer.
	subID, _ := f.bus.Subscribe(1)
	defer f.bus.Unsubscribe(subID)
	for range 300 {
		f.bus.PublishNew(taskboardv1.EventTypeTaskUpdated, first.ID, "", nil)
	}

	for _, id := range []string{first.ID, second.ID} {
		_, err := f.srv.DeleteTask(admin(), connect.NewRequest(&taskboardv1.DeleteTaskRequest{ID: id}))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{first.ID, second.ID}, spy.purged)
	assert.Empty(t, f.kinds(t, first.ID))
	assert.Empty(t, f.kinds(t, second.ID))
}

func TestDeleteTaskKeepsTaskWhenPurgeFails(t *testing.T) {
	f := setup(t)
	spy := &purger{err: errors.New("storage down")}
	f.srv.PurgeOnDelete(spy)
	tk := f.newTask(t)

	_, err := f.srv.DeleteTask(admin(), connect.NewRequest(&taskboardv1.DeleteTaskRequest{ID: tk.ID}))
	require.True(t, cerr.IsCode(err, cerr.Internal))

	_, err = f.srv.GetTask(admin(), connect.NewRequest(&taskboardv1.GetTaskRequest{ID: tk.ID}))
	require.NoError(t, err)

	spy.err = nil
	_, err = f.srv.DeleteTask(admin(), connect.NewRequest(&taskboardv1.DeleteTaskRequest{ID: tk.ID}))
	require.NoError(t, err)
	assert.Equal(t, []string{tk.ID}, spy.purged)
}
