package activity

import (
	"context"

	"connectrpc.com/connect"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
)

var _ taskboardv1connect.ActivityServiceHandler = (*Server)(nil)

// TaskAuthorizer reports whether the caller in ctx may see a task.
type TaskAuthorizer interface {
	Authorize(ctx context.Context, taskID string) error
}

type Server struct {
	repo  Repository
	tasks TaskAuthorizer
}

func NewServer(repo Repository, tasks TaskAuthorizer) *Server {
	return &Server{repo: repo, tasks: tasks}
}

func (s *Server) ListActivity(ctx context.Context, req *connect.Request[taskboardv1.ListActivityRequest]) (*connect.Response[taskboardv1.ListActivityResponse], error) {
	if _, err := actor.Require(ctx); err != nil {
		return nil, err
	}
	if err := s.tasks.Authorize(ctx, req.Msg.TaskID); err != nil {
		return nil, err
	}
	limit, offset := int32(50), req.Msg.Offset
	if req.Msg.Limit > 0 {
		limit = req.Msg.Limit
	}
	list, total, err := s.repo.List(ctx, req.Msg.TaskID, int(limit), int(offset))
	if err != nil {
		return nil, err
	}
	protos := make([]*taskboardv1.Activity, len(list))
	for i, a := range list {
		protos[i] = toProto(a)
	}
	return connect.NewResponse(&taskboardv1.ListActivityResponse{
		Activities: protos,
		Total:      int32(total),
	}), nil
}

func toProto(a *Activity) *taskboardv1.Activity {
	return &taskboardv1.Activity{
		ID:        a.ID,
		TaskID:    a.TaskID,
		ActorID:   a.ActorID,
		Role:      string(a.Role),
		Kind:      string(a.Kind),
		Message:   a.Message,
		Diff:      a.Diff,
		CreatedAt: a.CreatedAt,
	}
}
