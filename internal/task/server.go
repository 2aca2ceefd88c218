package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/oklog/ulid/v2"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/employee"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ taskboardv1connect.TaskServiceHandler = (*Server)(nil)

// RoleGranter adds a role to a user. Assigning a task grants roles as a side
// effect.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID string, role transition.Role) error
}

// Recorder appends entries to a task's activity trail.
type Recorder interface {
	Record(ctx context.Context, taskID string, a actor.Actor, kind activity.Kind, message string, before, after any)
}

// Purger removes data that belongs to a task. Purgers run before the task
// itself is deleted, so a failed purge leaves the task in place for a retry.
type Purger interface {
	PurgeTask(ctx context.Context, taskID string) error
}

type Server struct {
	repo      Repository
	policy    transition.Evaluator
	users     RoleGranter
	employees employee.Source
	activity  Recorder
	eventBus  *eventbus.Bus
	purgers   []Purger
	locks     *keyedMutex
	now       func() time.Time
}

func NewServer(repo Repository, policy transition.Evaluator, users RoleGranter, employees employee.Source, recorder Recorder, eventBus *eventbus.Bus) *Server {
	return &Server{
		repo:      repo,
		policy:    policy,
		users:     users,
		employees: employees,
		activity:  recorder,
		eventBus:  eventBus,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// PurgeOnDelete registers purgers run by DeleteTask. Remarks depend on the
// task server, so they are wired after construction.
func (s *Server) PurgeOnDelete(purgers ...Purger) {
	s.purgers = append(s.purgers, purgers...)
}

func (s *Server) CreateTask(ctx context.Context, req *connect.Request[taskboardv1.CreateTaskRequest]) (*connect.Response[taskboardv1.CreateTaskResponse], error) {
	a, err := actor.RequireRole(ctx, "only Managers and Admins can create tasks", transition.RoleManager, transition.RoleAdmin)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &Task{
		ID:              ulid.Make().String(),
		Title:           strings.TrimSpace(req.Msg.Title),
		Description:     strings.TrimSpace(req.Msg.Description),
		Status:          transition.StatusTodo,
		Priority:        PriorityMedium,
		CreatedBy:       a.UserID,
		Reviewer:        strings.TrimSpace(req.Msg.Reviewer),
		ExpectedClosure: req.Msg.ExpectedClosure,
		CreatedAt:       now,
		UpdatedAt:       now,
		UpdatedBy:       a.UserID,
	}
	if req.Msg.Priority != "" {
		t.Priority = Priority(req.Msg.Priority)
	}
	t.assign(strings.TrimSpace(req.Msg.AssignedTo), a.UserID, now)

	if err := s.validate(ctx, t, t.AssignedTo, t.Reviewer); err != nil {
		return nil, err
	}
	if err := s.grantRoles(ctx, t.AssignedTo, t.Reviewer); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	msg := "task created"
	if t.AssignedTo != "" {
		msg += ", assigned to " + s.displayName(ctx, employee.NewDirectory(s.employees), t.AssignedTo)
	}
	s.activity.Record(ctx, t.ID, a, activity.KindCreated, msg, nil, nil)
	s.publish(taskboardv1.EventTypeTaskCreated, t, nil)
	slog.InfoContext(ctx, "task created", "task_id", t.ID, "assigned_to", t.AssignedTo)

	return connect.NewResponse(&taskboardv1.CreateTaskResponse{
		Task: ToProto(t),
	}), nil
}

// Viewable loads a task the caller in ctx is allowed to see.
func (s *Server) Viewable(ctx context.Context, id string) (*Task, error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(a, t) {
		return nil, cerr.NewError(cerr.PermissionDenied, "you don't have access to this task", nil)
	}
	return t, nil
}

// Authorize is Viewable for callers that only need the answer.
func (s *Server) Authorize(ctx context.Context, id string) error {
	_, err := s.Viewable(ctx, id)
	return err
}

func (s *Server) GetTask(ctx context.Context, req *connect.Request[taskboardv1.GetTaskRequest]) (*connect.Response[taskboardv1.GetTaskResponse], error) {
	t, err := s.Viewable(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskboardv1.GetTaskResponse{
		Task: ToProto(t),
	}), nil
}

func (s *Server) ListTasks(ctx context.Context, req *connect.Request[taskboardv1.ListTasksRequest]) (*connect.Response[taskboardv1.ListTasksResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	f := Filter{AssignedTo: req.Msg.AssignedTo, Viewer: &a}
	if req.Msg.Status != "" {
		st, err := transition.ParseStatus(req.Msg.Status)
		if err != nil {
			return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), nil)
		}
		f.Status = st
	}
	if req.Msg.Priority != "" {
		p, err := ParsePriority(req.Msg.Priority)
		if err != nil {
			return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), nil)
		}
		f.Priority = p
	}

	limit, offset := int32(50), req.Msg.Offset
	if req.Msg.Limit > 0 {
		limit = req.Msg.Limit
	}
	tasks, total, err := s.repo.List(ctx, f, int(limit), int(offset))
	if err != nil {
		return nil, err
	}
	protos := make([]*taskboardv1.Task, len(tasks))
	for i, t := range tasks {
		protos[i] = ToProto(t)
	}
	return connect.NewResponse(&taskboardv1.ListTasksResponse{
		Tasks: protos,
		Total: int32(total),
	}), nil
}

func (s *Server) UpdateTask(ctx context.Context, req *connect.Request[taskboardv1.UpdateTaskRequest]) (*connect.Response[taskboardv1.UpdateTaskResponse], error) {
	a, err := actor.RequireRole(ctx, "only Managers and Admins can update tasks", transition.RoleManager, transition.RoleAdmin)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(req.Msg.ID)
	defer unlock()

	t, err := s.Viewable(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	before := *t
	now := s.now()
	dir := employee.NewDirectory(s.employees)

	var changes []string
	var newAssignee, newReviewer string
	if req.Msg.Title != nil {
		t.Title = strings.TrimSpace(*req.Msg.Title)
	}
	if req.Msg.Description != nil {
		t.Description = strings.TrimSpace(*req.Msg.Description)
	}
	if req.Msg.Priority != nil {
		t.Priority = Priority(*req.Msg.Priority)
	}
	if req.Msg.ExpectedClosure != nil {
		t.ExpectedClosure = req.Msg.ExpectedClosure
	}
	if req.Msg.AssignedTo != nil {
		if assignee := strings.TrimSpace(*req.Msg.AssignedTo); assignee != t.AssignedTo {
			t.assign(assignee, a.UserID, now)
			newAssignee = assignee
			if assignee == "" {
				changes = append(changes, "unassigned")
			} else {
				changes = append(changes, "assigned to "+s.displayName(ctx, dir, assignee))
			}
		}
	}
	if req.Msg.Reviewer != nil {
		if reviewer := strings.TrimSpace(*req.Msg.Reviewer); reviewer != t.Reviewer {
			t.Reviewer = reviewer
			newReviewer = reviewer
			if reviewer == "" {
				changes = append(changes, "reviewer removed")
			} else {
				changes = append(changes, "reviewer set to "+s.displayName(ctx, dir, reviewer))
			}
		}
	}

	if err := s.validate(ctx, t, newAssignee, newReviewer); err != nil {
		return nil, err
	}
	if err := s.grantRoles(ctx, newAssignee, newReviewer); err != nil {
		return nil, err
	}
	t.UpdatedBy = a.UserID
	t.UpdatedAt = now
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	msg := "task updated"
	if len(changes) > 0 {
		msg = strings.Join(changes, "; ")
	}
	s.activity.Record(ctx, t.ID, a, activity.KindUpdated, msg, &before, t)
	s.publish(taskboardv1.EventTypeTaskUpdated, t, nil)

	return connect.NewResponse(&taskboardv1.UpdateTaskResponse{
		Task: ToProto(t),
	}), nil
}

// MoveTask changes a task's status when the transition policy allows it. A
// denial is returned as FailedPrecondition carrying the policy's reason.
func (s *Server) MoveTask(ctx context.Context, req *connect.Request[taskboardv1.MoveTaskRequest]) (*connect.Response[taskboardv1.MoveTaskResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	to, err := transition.ParseStatus(req.Msg.Status)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), nil)
	}

	unlock := s.locks.Lock(req.Msg.ID)
	defer unlock()

	t, err := s.Viewable(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if t.Status == to {
		return connect.NewResponse(&taskboardv1.MoveTaskResponse{
			Task:    ToProto(t),
			Verdict: &taskboardv1.Verdict{Allowed: true},
		}), nil
	}

	verdict, err := s.evaluate(a, t, to)
	if err != nil {
		return nil, err
	}
	if !verdict.Allowed {
		slog.InfoContext(ctx, "task move denied", "task_id", t.ID, "from", t.Status, "to", to, "reason", verdict.Reason)
		return nil, cerr.NewError(cerr.FailedPrecondition, verdict.Reason, nil)
	}

	before := *t
	now := s.now()
	t.setStatus(to, now)
	t.UpdatedBy = a.UserID
	t.UpdatedAt = now
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, t.ID, a, activity.KindStatusChanged,
		fmt.Sprintf("moved from %s to %s", before.Status.Label(), to.Label()), &before, t)
	s.publish(taskboardv1.EventTypeTaskStatusChanged, t, map[string]string{
		"from": string(before.Status),
		"to":   string(to),
	})
	slog.InfoContext(ctx, "task moved", "task_id", t.ID, "from", before.Status, "to", to)

	return connect.NewResponse(&taskboardv1.MoveTaskResponse{
		Task:    ToProto(t),
		Verdict: toProtoVerdict(verdict),
	}), nil
}

// CheckTransition evaluates a move without applying it.
func (s *Server) CheckTransition(ctx context.Context, req *connect.Request[taskboardv1.CheckTransitionRequest]) (*connect.Response[taskboardv1.CheckTransitionResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	to, err := transition.ParseStatus(req.Msg.Status)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), nil)
	}
	t, err := s.Viewable(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	verdict := transition.Verdict{Allowed: true}
	if t.Status != to {
		if verdict, err = s.evaluate(a, t, to); err != nil {
			return nil, err
		}
	}
	return connect.NewResponse(&taskboardv1.CheckTransitionResponse{
		Verdict: toProtoVerdict(verdict),
	}), nil
}

func (s *Server) UpdateTaskPriority(ctx context.Context, req *connect.Request[taskboardv1.UpdateTaskPriorityRequest]) (*connect.Response[taskboardv1.UpdateTaskPriorityResponse], error) {
	a, err := actor.RequireRole(ctx, "only Managers and Admins can change priority", transition.RoleManager, transition.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p, err := ParsePriority(req.Msg.Priority)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), nil)
	}

	unlock := s.locks.Lock(req.Msg.ID)
	defer unlock()

	t, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if a.Is(transition.RoleManager) && t.Reviewer != a.UserID {
		return nil, cerr.NewError(cerr.PermissionDenied, "you are not the manager of this task", nil)
	}
	if t.Priority == p {
		return connect.NewResponse(&taskboardv1.UpdateTaskPriorityResponse{Task: ToProto(t)}), nil
	}

	before := *t
	t.Priority = p
	t.UpdatedBy = a.UserID
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, t.ID, a, activity.KindPriorityChanged,
		fmt.Sprintf("priority changed from %s to %s", before.Priority, p), &before, t)
	s.publish(taskboardv1.EventTypeTaskUpdated, t, nil)

	return connect.NewResponse(&taskboardv1.UpdateTaskPriorityResponse{
		Task: ToProto(t),
	}), nil
}

func (s *Server) DeleteTask(ctx context.Context, req *connect.Request[taskboardv1.DeleteTaskRequest]) (*connect.Response[taskboardv1.DeleteTaskResponse], error) {
	if _, err := actor.RequireRole(ctx, "only Admin can delete tasks", transition.RoleAdmin); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(req.Msg.ID)
	defer unlock()

	// Get task before delete for event metadata.
	t, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range s.purgers {
		if err := p.PurgeTask(ctx, t.ID); err != nil {
			return nil, cerr.NewError(cerr.Internal, "failed to purge task data", err)
		}
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return nil, err
	}
	s.publish(taskboardv1.EventTypeTaskDeleted, t, nil)
	slog.InfoContext(ctx, "task deleted", "task_id", t.ID)

	return connect.NewResponse(&taskboardv1.DeleteTaskResponse{}), nil
}

func (s *Server) evaluate(a actor.Actor, t *Task, to transition.Status) (transition.Verdict, error) {
	verdict, err := s.policy.Evaluate(transition.Request{
		Task:      t.Snapshot(),
		Actor:     a.Transition(),
		NewStatus: to,
	})
	if err != nil {
		// Input was validated above, so this is corrupt stored state.
		return transition.Verdict{}, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("task %s: %w", t.ID, err))
	}
	return verdict, nil
}

// validate checks the task fields and that the given people exist. Empty
// ids are skipped.
func (s *Server) validate(ctx context.Context, t *Task, assignee, reviewer string) error {
	vs := Validate(t)
	for _, p := range []struct{ field, id string }{{"assignedTo", assignee}, {"reviewer", reviewer}} {
		if p.id == "" {
			continue
		}
		if _, err := s.employees.Get(ctx, p.id); err != nil {
			if !cerr.IsCode(err, cerr.NotFound) && !cerr.IsCode(err, cerr.InvalidArgument) {
				return err
			}
			vs = append(vs, cerr.Violation{Field: p.field, Message: fmt.Sprintf("employee %q not found", p.id)})
		}
	}
	if len(vs) > 0 {
		return cerr.NewValidationError("invalid task", vs)
	}
	return nil
}

func (s *Server) grantRoles(ctx context.Context, assignee, reviewer string) error {
	if assignee != "" {
		if err := s.users.GrantRole(ctx, assignee, transition.RoleDeveloper); err != nil {
			return err
		}
	}
	if reviewer != "" {
		if err := s.users.GrantRole(ctx, reviewer, transition.RoleManager); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) displayName(ctx context.Context, dir *employee.Directory, id string) string {
	name, err := dir.Name(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve employee name", "employee_id", id, "error", err)
		return id
	}
	return name
}

func (s *Server) publish(eventType taskboardv1.EventType, t *Task, extra map[string]string) {
	md := t.Audience().Metadata(t.ID)
	for k, v := range extra {
		md[k] = v
	}
	s.eventBus.PublishNew(eventType, t.ID, "", md)
}

func ToProto(t *Task) *taskboardv1.Task {
	return &taskboardv1.Task{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		CreatedBy:       t.CreatedBy,
		AssignedTo:      t.AssignedTo,
		AssignedBy:      t.AssignedBy,
		AssignedAt:      t.AssignedAt,
		Reviewer:        t.Reviewer,
		UpdatedBy:       t.UpdatedBy,
		ExpectedClosure: t.ExpectedClosure,
		ActualClosure:   t.ActualClosure,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toProtoVerdict(v transition.Verdict) *taskboardv1.Verdict {
	return &taskboardv1.Verdict{Allowed: v.Allowed, Reason: v.Reason}
}
