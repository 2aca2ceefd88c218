package remark

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"connectrpc.com/connect"
	"github.com/oklog/ulid/v2"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ taskboardv1connect.RemarkServiceHandler = (*Server)(nil)

// TaskViewer loads a task the caller in ctx may see.
type TaskViewer interface {
	Viewable(ctx context.Context, id string) (*task.Task, error)
}

type Server struct {
	repo        Repository
	attachments *AttachmentStore
	tasks       TaskViewer
	activity    task.Recorder
	eventBus    *eventbus.Bus
}

func NewServer(repo Repository, attachments *AttachmentStore, tasks TaskViewer, recorder task.Recorder, eventBus *eventbus.Bus) *Server {
	return &Server{
		repo:        repo,
		attachments: attachments,
		tasks:       tasks,
		activity:    recorder,
		eventBus:    eventBus,
	}
}

func (s *Server) CreateRemark(ctx context.Context, req *connect.Request[taskboardv1.CreateRemarkRequest]) (*connect.Response[taskboardv1.CreateRemarkResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.Viewable(ctx, req.Msg.TaskID)
	if err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(req.Msg.Comment)
	if err := validateComment(comment); err != nil {
		return nil, err
	}

	now := time.Now()
	r := &Remark{
		ID:        ulid.Make().String(),
		TaskID:    t.ID,
		Comment:   comment,
		CreatedBy: a.UserID,
		Role:      a.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Msg.Attachment != nil {
		if r.Attachment, err = s.attachments.Put(ctx, req.Msg.Attachment); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.dropAttachment(ctx, r.Attachment)
		return nil, err
	}

	s.activity.Record(ctx, t.ID, a, activity.KindRemarkAdded, "remark added", nil, nil)
	s.publish(taskboardv1.EventTypeRemarkAdded, r, t)

	return connect.NewResponse(&taskboardv1.CreateRemarkResponse{
		Remark: toProto(r),
	}), nil
}

func (s *Server) ListRemarks(ctx context.Context, req *connect.Request[taskboardv1.ListRemarksRequest]) (*connect.Response[taskboardv1.ListRemarksResponse], error) {
	if _, err := s.tasks.Viewable(ctx, req.Msg.TaskID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByTask(ctx, req.Msg.TaskID)
	if err != nil {
		return nil, err
	}
	protos := make([]*taskboardv1.Remark, len(list))
	for i, r := range list {
		protos[i] = toProto(r)
	}
	return connect.NewResponse(&taskboardv1.ListRemarksResponse{Remarks: protos}), nil
}

func (s *Server) UpdateRemark(ctx context.Context, req *connect.Request[taskboardv1.UpdateRemarkRequest]) (*connect.Response[taskboardv1.UpdateRemarkResponse], error) {
	if req.Msg.Comment == nil && req.Msg.Attachment == nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "nothing to update", nil)
	}
	r, t, err := s.owned(ctx, req.Msg.ID, "you can only edit your own remarks")
	if err != nil {
		return nil, err
	}
	if req.Msg.Comment != nil {
		comment := strings.TrimSpace(*req.Msg.Comment)
		if err := validateComment(comment); err != nil {
			return nil, err
		}
		r.Comment = comment
	}

	old := r.Attachment
	if req.Msg.Attachment != nil {
		if r.Attachment, err = s.attachments.Put(ctx, req.Msg.Attachment); err != nil {
			return nil, err
		}
	}
	r.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, r); err != nil {
		if r.Attachment != old {
			s.dropAttachment(ctx, r.Attachment)
		}
		return nil, err
	}
	if r.Attachment != old {
		s.dropAttachment(ctx, old)
	}

	s.publish(taskboardv1.EventTypeRemarkUpdated, r, t)
	return connect.NewResponse(&taskboardv1.UpdateRemarkResponse{
		Remark: toProto(r),
	}), nil
}

func (s *Server) DeleteRemark(ctx context.Context, req *connect.Request[taskboardv1.DeleteRemarkRequest]) (*connect.Response[taskboardv1.DeleteRemarkResponse], error) {
	r, t, err := s.owned(ctx, req.Msg.ID, "you can only delete your own remarks")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, r.ID); err != nil {
		return nil, err
	}
	s.dropAttachment(ctx, r.Attachment)
	s.publish(taskboardv1.EventTypeRemarkDeleted, r, t)
	return connect.NewResponse(&taskboardv1.DeleteRemarkResponse{}), nil
}

// PurgeTask removes every remark of a task along with its attachments.
func (s *Server) PurgeTask(ctx context.Context, taskID string) error {
	list, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range list {
		if err := s.repo.Delete(ctx, r.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		s.dropAttachment(ctx, r.Attachment)
	}
	return errors.Join(errs...)
}

// owned loads a remark the caller wrote, or any remark for admins, on a
// task the caller can still see.
func (s *Server) owned(ctx context.Context, id, denied string) (*Remark, *task.Task, error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.tasks.Viewable(ctx, r.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if r.CreatedBy != a.UserID && !a.Is(transition.RoleAdmin) {
		return nil, nil, cerr.NewError(cerr.PermissionDenied, denied, nil)
	}
	return r, t, nil
}

func (s *Server) dropAttachment(ctx context.Context, a *Attachment) {
	if a == nil {
		return
	}
	if err := s.attachments.Delete(ctx, a.ID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
		slog.WarnContext(ctx, "failed to delete attachment", "attachment_id", a.ID, "error", err)
	}
}

func (s *Server) publish(eventType taskboardv1.EventType, r *Remark, t *task.Task) {
	md := t.Audience().Metadata(t.ID)
	md["remark_id"] = r.ID
	s.eventBus.PublishNew(eventType, r.ID, "", md)
}

func validateComment(comment string) error {
	switch {
	case comment == "":
		return cerr.NewValidationError("invalid remark", []cerr.Violation{{Field: "comment", Message: "comment is required"}})
	case utf8.RuneCountInString(comment) > MaxCommentLength:
		return cerr.NewValidationError("invalid remark", []cerr.Violation{{Field: "comment", Message: "comment must be at most 1000 characters"}})
	}
	return nil
}

func toProto(r *Remark) *taskboardv1.Remark {
	p := &taskboardv1.Remark{
		ID:        r.ID,
		TaskID:    r.TaskID,
		Comment:   r.Comment,
		CreatedBy: r.CreatedBy,
		Role:      string(r.Role),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Attachment != nil {
		p.Attachment = &taskboardv1.Attachment{
			ID:          r.Attachment.ID,
			Name:        r.Attachment.Name,
			ContentType: r.Attachment.ContentType,
			Size:        r.Attachment.Size,
		}
	}
	return p
}
