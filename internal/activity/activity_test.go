package activity_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/activity/repositoryimpl"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

type doc struct {
	Title  string `yaml:"title"`
	Status string `yaml:"status"`
}

type authorizer map[string]bool

func (a authorizer) Authorize(_ context.Context, taskID string) error {
	if !a[taskID] {
		return cerr.NewError(cerr.PermissionDenied, "you don't have access to this task", nil)
	}
	return nil
}

func newRepo(t *testing.T) activity.Repository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return repositoryimpl.NewYAMLRepository(s)
}

var dev = actor.Actor{UserID: "3", Role: transition.RoleDeveloper, Roles: []transition.Role{transition.RoleDeveloper}}

func TestDiff(t *testing.T) {
	diff, err := activity.Diff(doc{Title: "a", Status: "todo"}, doc{Title: "a", Status: "inprogress"})
	require.NoError(t, err)
	assert.Contains(t, diff, "--- before")
	assert.Contains(t, diff, "+++ after")
	assert.Contains(t, diff, "-status: todo")
	assert.Contains(t, diff, "+status: inprogress")

	diff, err = activity.Diff(doc{Title: "a"}, doc{Title: "a"})
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestRecorderAndList(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rec := activity.NewRecorder(repo)

	rec.Record(ctx, "t1", dev, activity.KindCreated, "task created", nil, nil)
	rec.Record(ctx, "t1", dev, activity.KindStatusChanged, "moved from To Do to In Progress",
		doc{Status: "todo"}, doc{Status: "inprogress"})
	rec.Record(ctx, "t2", dev, activity.KindCreated, "task created", nil, nil)

	srv := activity.NewServer(repo, authorizer{"t1": true})
	resp, err := srv.ListActivity(actor.NewContext(ctx, dev), connect.NewRequest(&taskboardv1.ListActivityRequest{TaskID: "t1"}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Activities, 2)
	assert.EqualValues(t, 2, resp.Msg.Total)
	assert.Equal(t, "created", resp.Msg.Activities[0].Kind)
	assert.Empty(t, resp.Msg.Activities[0].Diff)
	assert.Equal(t, "status_changed", resp.Msg.Activities[1].Kind)
	assert.Equal(t, "developer", resp.Msg.Activities[1].Role)
	assert.Contains(t, resp.Msg.Activities[1].Diff, "+status: inprogress")

	resp, err = srv.ListActivity(actor.NewContext(ctx, dev), connect.NewRequest(&taskboardv1.ListActivityRequest{TaskID: "t1", Limit: 1, Offset: 1}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Activities, 1)
	assert.Equal(t, "status_changed", resp.Msg.Activities[0].Kind)

	_, err = srv.ListActivity(actor.NewContext(ctx, dev), connect.NewRequest(&taskboardv1.ListActivityRequest{TaskID: "t2"}))
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	_, err = srv.ListActivity(ctx, connect.NewRequest(&taskboardv1.ListActivityRequest{TaskID: "t1"}))
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))
}

func TestPurgeTask(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rec := activity.NewRecorder(repo)

	rec.Record(ctx, "t1", dev, activity.KindCreated, "task created", nil, nil)
	rec.Record(ctx, "t1", dev, activity.KindPriorityChanged, "priority changed", nil, nil)
	rec.Record(ctx, "t2", dev, activity.KindCreated, "task created", nil, nil)

	require.NoError(t, rec.PurgeTask(ctx, "t1"))

	_, total, err := repo.List(ctx, "t1", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.List(ctx, "t2", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.NoError(t, rec.PurgeTask(ctx, "t1"))
}
