package event

import (
	"context"

	"connectrpc.com/connect"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
)

var _ taskboardv1connect.EventServiceHandler = (*Server)(nil)

// TaskAuthorizer reports whether the caller in ctx may see a task.
type TaskAuthorizer interface {
	Authorize(ctx context.Context, taskID string) error
}

type Server struct {
	eventBus *eventbus.Bus
	tasks    TaskAuthorizer
}

func NewServer(eventBus *eventbus.Bus, tasks TaskAuthorizer) *Server {
	return &Server{eventBus: eventBus, tasks: tasks}
}

// SubscribeEvents streams board events the caller is allowed to see. Events
// are matched against the task audience carried in their metadata, as it
// was when the event was published.
func (s *Server) SubscribeEvents(ctx context.Context, req *connect.Request[taskboardv1.SubscribeEventsRequest], stream *connect.ServerStream[taskboardv1.Event]) error {
	a, err := actor.Require(ctx)
	if err != nil {
		return err
	}
	if req.Msg.TaskID != "" {
		if err := s.tasks.Authorize(ctx, req.Msg.TaskID); err != nil {
			return err
		}
	}

	subID, ch := s.eventBus.Subscribe(64, req.Msg.EventTypes...)
	defer s.eventBus.Unsubscribe(subID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			audience, taskID := task.AudienceFromMetadata(event.Metadata)
			if req.Msg.TaskID != "" && taskID != req.Msg.TaskID {
				continue
			}
			if !audience.Visible(a) {
				continue
			}
			if err := stream.Send(event); err != nil {
				return err
			}
		}
	}
}
