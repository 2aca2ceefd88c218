package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
)

type fakeTasks struct {
	taskboardv1connect.TaskServiceHandler
	headers http.Header
}

func (f *fakeTasks) MoveTask(_ context.Context, req *connect.Request[taskboardv1.MoveTaskRequest]) (*connect.Response[taskboardv1.MoveTaskResponse], error) {
	f.headers = req.Header().Clone()
	return connect.NewResponse(&taskboardv1.MoveTaskResponse{
		Task:    &taskboardv1.Task{ID: req.Msg.ID, Status: req.Msg.Status},
		Verdict: &taskboardv1.Verdict{Allowed: true},
	}), nil
}

func (f *fakeTasks) DeleteTask(context.Context, *connect.Request[taskboardv1.DeleteTaskRequest]) (*connect.Response[taskboardv1.DeleteTaskResponse], error) {
	return nil, connect.NewError(connect.CodePermissionDenied, nil)
}

func newTestClient(t *testing.T, cfg *Config) *fakeTasks {
	t.Helper()
	fake := &fakeTasks{}
	mux := http.NewServeMux()
	mux.Handle(taskboardv1connect.NewTaskServiceHandler(fake))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cfg.ServerURL = srv.URL
	return fake
}

func TestHeaders(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantAuth string
		wantRole string
	}{
		{name: "token and role", cfg: Config{Token: "tok", Role: "manager"}, wantAuth: "Bearer tok", wantRole: "manager"},
		{name: "token only", cfg: Config{Token: "tok"}, wantAuth: "Bearer tok"},
		{name: "anonymous", cfg: Config{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			fake := newTestClient(t, &cfg)
			c := New(nil, &cfg)

			resp, err := c.MoveTask(t.Context(), "t1", "review")
			require.NoError(t, err)
			assert.Equal(t, "review", resp.Task.Status)
			assert.True(t, resp.Verdict.Allowed)
			assert.Equal(t, tt.wantAuth, fake.headers.Get("Authorization"))
			assert.Equal(t, tt.wantRole, fake.headers.Get(taskboardv1.RoleHeader))
		})
	}
}

func TestErrorsKeepCode(t *testing.T) {
	cfg := Config{Token: "tok"}
	newTestClient(t, &cfg)
	c := New(nil, &cfg)

	err := c.DeleteTask(t.Context(), "t1")
	require.Error(t, err)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TASKBOARD_SERVER_URL", "http://board:3100")
	t.Setenv("TASKBOARD_TOKEN", "tok")
	t.Setenv("TASKBOARD_ROLE", "developer")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, &Config{ServerURL: "http://board:3100", Token: "tok", Role: "developer"}, cfg)
}
