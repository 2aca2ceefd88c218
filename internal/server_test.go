package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/activity"
	activityrepo "github.com/kazz187/taskboard/internal/activity/repositoryimpl"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/client"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/dashboard"
	"github.com/kazz187/taskboard/internal/employee"
	employeerepo "github.com/kazz187/taskboard/internal/employee/repositoryimpl"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/remark"
	remarkrepo "github.com/kazz187/taskboard/internal/remark/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/storage"
)

const (
	adminEmail    = "admin@ust.com"
	adminPassword = "secret"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	env := &config.Env{
		BaseEnv: config.BaseEnv{CORSAllowedOrigins: []string{"*"}},
		AuthEnv: config.AuthEnv{JWTSecret: "test-secret", DefaultPassword: "password123", EmailDomain: "ust.com"},
	}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	bus := eventbus.New()
	userRepo := userrepo.NewYAMLRepository(store)
	employeeRepo := employeerepo.NewYAMLRepository(store)
	taskRepo := taskrepo.NewYAMLRepository(store)
	remarkRepo := remarkrepo.NewYAMLRepository(store)
	activityRepo := activityrepo.NewYAMLRepository(store)

	created, err := employee.BootstrapAdmin(t.Context(), employeeRepo, userRepo, adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	tokens := auth.NewTokenIssuer(env.JWTSecret, time.Hour)
	recorder := activity.NewRecorder(activityRepo)
	userServer := user.NewServer(userRepo)
	taskServer := task.NewServer(taskRepo, transition.Policy{}, userServer, employeeRepo, recorder, bus)
	remarkServer := remark.NewServer(remarkRepo, remark.NewAttachmentStore(store, 0), taskServer, recorder, bus)
	taskServer.PurgeOnDelete(remarkServer, recorder)

	srv := NewServer(
		env,
		auth.NewAuthenticator(tokens, userRepo),
		auth.NewServer(tokens, userRepo),
		userServer,
		employee.NewServer(employeeRepo, userRepo, env.DefaultPassword, env.EmailDomain),
		taskServer,
		remarkServer,
		activity.NewServer(activityRepo, taskServer),
		dashboard.NewServer(taskRepo, employeeRepo, userRepo),
		event.NewServer(bus, taskServer),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func login(t *testing.T, url, id, password string) *client.Client {
	t.Helper()
	resp, err := client.New(nil, &client.Config{ServerURL: url}).Login(t.Context(), id, password)
	require.NoError(t, err)
	return client.New(nil, &client.Config{ServerURL: url, Token: resp.Token})
}

func TestBoardFlow(t *testing.T) {
	url := newTestServer(t)
	ctx := t.Context()
	admin := login(t, url, adminEmail, adminPassword)

	dev, err := admin.CreateEmployee(ctx, &taskboardv1.CreateEmployeeRequest{
		Name:        "Dev One",
		Email:       "dev@ust.com",
		Designation: "Developer",
		ManagerID:   "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "2", dev.ID)

	created, err := admin.CreateTask(ctx, &taskboardv1.CreateTaskRequest{Title: "Write docs", AssignedTo: dev.ID})
	require.NoError(t, err)
	assert.Equal(t, transition.StatusTodo.String(), created.Status)

	developer := login(t, url, dev.ID, "password123")
	me, err := developer.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, transition.RoleDeveloper.String(), me.ActiveRole)

	moved, err := developer.MoveTask(ctx, created.ID, transition.StatusInProgress.String())
	require.NoError(t, err)
	assert.True(t, moved.Verdict.Allowed)
	assert.Equal(t, transition.StatusInProgress.String(), moved.Task.Status)

	v, err := developer.CheckTransition(ctx, created.ID, transition.StatusDone.String())
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, transition.ReasonDeveloper, v.Reason)

	_, err = developer.MoveTask(ctx, created.ID, transition.StatusDone.String())
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	assert.Contains(t, err.Error(), transition.ReasonDeveloper)

	trail, err := admin.ListActivity(ctx, created.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, trail.Total)

	err = developer.DeleteTask(ctx, created.ID)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	require.NoError(t, admin.DeleteTask(ctx, created.ID))
}

func TestUnauthenticated(t *testing.T) {
	url := newTestServer(t)
	anonymous := client.New(nil, &client.Config{ServerURL: url})

	_, err := anonymous.ListTasks(t.Context(), &taskboardv1.ListTasksRequest{})
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = anonymous.Login(t.Context(), adminEmail, "wrong")
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestHTTPRoutes(t *testing.T) {
	url := newTestServer(t)
	tests := []struct {
		path string
		want int
	}{
		{path: "/health", want: http.StatusOK},
		{path: "/api/nope", want: http.StatusNotFound},
		{path: "/api/attachments/missing", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(url + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
