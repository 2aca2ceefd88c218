package dashboard

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/sourcegraph/conc/pool"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/employee"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/panicerr"
)

var _ taskboardv1connect.DashboardServiceHandler = (*Server)(nil)

type Server struct {
	tasks     task.Repository
	employees employee.Repository
	users     user.Repository
	now       func() time.Time
}

func NewServer(tasks task.Repository, employees employee.Repository, users user.Repository) *Server {
	return &Server{tasks: tasks, employees: employees, users: users, now: time.Now}
}

// GetDashboard summarizes the tasks the caller can see. Admins also get
// head counts.
func (s *Server) GetDashboard(ctx context.Context, _ *connect.Request[taskboardv1.GetDashboardRequest]) (*connect.Response[taskboardv1.GetDashboardResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}

	var (
		tasks     []*task.Task
		employees []*employee.Employee
		users     []*user.User
	)
	p := pool.New().WithContext(ctx)
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		var err error
		tasks, _, err = s.tasks.List(ctx, task.Filter{Viewer: &a}, 0, 0)
		return err
	}))
	if a.Is(transition.RoleAdmin) {
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			var err error
			employees, err = s.employees.List(ctx, "")
			return err
		}))
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			var err error
			users, err = s.users.List(ctx)
			return err
		}))
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	resp := summarize(tasks, s.now())
	resp.Role = string(a.Role)
	if a.Is(transition.RoleAdmin) {
		ne, nu := int32(len(employees)), int32(len(users))
		resp.Employees, resp.Users = &ne, &nu
	}
	return connect.NewResponse(resp), nil
}

func summarize(tasks []*task.Task, now time.Time) *taskboardv1.GetDashboardResponse {
	counts := make(map[transition.Status]int32, 4)
	resp := &taskboardv1.GetDashboardResponse{Total: int32(len(tasks))}
	for _, t := range tasks {
		counts[t.Status]++
		if t.Overdue(now) {
			resp.Overdue++
		}
	}
	for _, st := range transition.Statuses() {
		resp.Statuses = append(resp.Statuses, &taskboardv1.StatusCount{
			Status: string(st),
			Label:  st.Label(),
			Count:  counts[st],
		})
	}
	return resp
}
