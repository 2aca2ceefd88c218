// Package client is a thin wrapper over the connect service clients used by
// the taskboard CLI.
package client

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/kelseyhightower/envconfig"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/employee"
)

type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:3100"`
	Token     string `envconfig:"TOKEN"`
	// Role selects which of the user's roles requests act as.
	Role string `envconfig:"ROLE"`
}

// LoadConfig reads TASKBOARD_SERVER_URL, TASKBOARD_TOKEN and TASKBOARD_ROLE.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TASKBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return &cfg, nil
}

type Client struct {
	auth      taskboardv1connect.AuthServiceClient
	employees taskboardv1connect.EmployeeServiceClient
	tasks     taskboardv1connect.TaskServiceClient
	remarks   taskboardv1connect.RemarkServiceClient
	activity  taskboardv1connect.ActivityServiceClient
	dashboard taskboardv1connect.DashboardServiceClient
}

func New(httpClient connect.HTTPClient, cfg *Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := connect.WithInterceptors(&headerInterceptor{token: cfg.Token, role: cfg.Role})
	return &Client{
		auth:      taskboardv1connect.NewAuthServiceClient(httpClient, cfg.ServerURL, opts),
		employees: taskboardv1connect.NewEmployeeServiceClient(httpClient, cfg.ServerURL, opts),
		tasks:     taskboardv1connect.NewTaskServiceClient(httpClient, cfg.ServerURL, opts),
		remarks:   taskboardv1connect.NewRemarkServiceClient(httpClient, cfg.ServerURL, opts),
		activity:  taskboardv1connect.NewActivityServiceClient(httpClient, cfg.ServerURL, opts),
		dashboard: taskboardv1connect.NewDashboardServiceClient(httpClient, cfg.ServerURL, opts),
	}
}

func (c *Client) Login(ctx context.Context, login, password string) (*taskboardv1.LoginResponse, error) {
	resp, err := c.auth.Login(ctx, connect.NewRequest(&taskboardv1.LoginRequest{Login: login, Password: password}))
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return resp.Msg, nil
}

func (c *Client) Me(ctx context.Context) (*taskboardv1.GetMeResponse, error) {
	resp, err := c.auth.GetMe(ctx, connect.NewRequest(&taskboardv1.GetMeRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return resp.Msg, nil
}

func (c *Client) ListTasks(ctx context.Context, req *taskboardv1.ListTasksRequest) (*taskboardv1.ListTasksResponse, error) {
	resp, err := c.tasks.ListTasks(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return resp.Msg, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*taskboardv1.Task, error) {
	resp, err := c.tasks.GetTask(ctx, connect.NewRequest(&taskboardv1.GetTaskRequest{ID: id}))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *Client) CreateTask(ctx context.Context, req *taskboardv1.CreateTaskRequest) (*taskboardv1.Task, error) {
	resp, err := c.tasks.CreateTask(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return resp.Msg.Task, nil
}

// AssignTask sets the assignee and, when reviewer is non-empty, the reviewer.
func (c *Client) AssignTask(ctx context.Context, id, assignee, reviewer string) (*taskboardv1.Task, error) {
	req := &taskboardv1.UpdateTaskRequest{ID: id, AssignedTo: &assignee}
	if reviewer != "" {
		req.Reviewer = &reviewer
	}
	resp, err := c.tasks.UpdateTask(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *Client) MoveTask(ctx context.Context, id, status string) (*taskboardv1.MoveTaskResponse, error) {
	resp, err := c.tasks.MoveTask(ctx, connect.NewRequest(&taskboardv1.MoveTaskRequest{ID: id, Status: status}))
	if err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}
	return resp.Msg, nil
}

func (c *Client) CheckTransition(ctx context.Context, id, status string) (*taskboardv1.Verdict, error) {
	resp, err := c.tasks.CheckTransition(ctx, connect.NewRequest(&taskboardv1.CheckTransitionRequest{ID: id, Status: status}))
	if err != nil {
		return nil, fmt.Errorf("failed to check transition: %w", err)
	}
	return resp.Msg.Verdict, nil
}

func (c *Client) UpdateTaskPriority(ctx context.Context, id, priority string) (*taskboardv1.Task, error) {
	resp, err := c.tasks.UpdateTaskPriority(ctx, connect.NewRequest(&taskboardv1.UpdateTaskPriorityRequest{ID: id, Priority: priority}))
	if err != nil {
		return nil, fmt.Errorf("failed to update priority: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if _, err := c.tasks.DeleteTask(ctx, connect.NewRequest(&taskboardv1.DeleteTaskRequest{ID: id})); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (c *Client) ListRemarks(ctx context.Context, taskID string) ([]*taskboardv1.Remark, error) {
	resp, err := c.remarks.ListRemarks(ctx, connect.NewRequest(&taskboardv1.ListRemarksRequest{TaskID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list remarks: %w", err)
	}
	return resp.Msg.Remarks, nil
}

func (c *Client) CreateRemark(ctx context.Context, taskID, comment string, attachment *taskboardv1.AttachmentUpload) (*taskboardv1.Remark, error) {
	resp, err := c.remarks.CreateRemark(ctx, connect.NewRequest(&taskboardv1.CreateRemarkRequest{
		TaskID:     taskID,
		Comment:    comment,
		Attachment: attachment,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to add remark: %w", err)
	}
	return resp.Msg.Remark, nil
}

func (c *Client) DeleteRemark(ctx context.Context, id string) error {
	if _, err := c.remarks.DeleteRemark(ctx, connect.NewRequest(&taskboardv1.DeleteRemarkRequest{ID: id})); err != nil {
		return fmt.Errorf("failed to delete remark: %w", err)
	}
	return nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]*taskboardv1.Employee, error) {
	resp, err := c.employees.ListEmployees(ctx, connect.NewRequest(&taskboardv1.ListEmployeesRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return resp.Msg.Employees, nil
}

func (c *Client) CreateEmployee(ctx context.Context, req *taskboardv1.CreateEmployeeRequest) (*taskboardv1.Employee, error) {
	resp, err := c.employees.CreateEmployee(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return resp.Msg.Employee, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := c.employees.DeleteEmployee(ctx, connect.NewRequest(&taskboardv1.DeleteEmployeeRequest{ID: id})); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func (c *Client) Dashboard(ctx context.Context) (*taskboardv1.GetDashboardResponse, error) {
	resp, err := c.dashboard.GetDashboard(ctx, connect.NewRequest(&taskboardv1.GetDashboardRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	return resp.Msg, nil
}

func (c *Client) ListActivity(ctx context.Context, taskID string, limit, offset int32) (*taskboardv1.ListActivityResponse, error) {
	resp, err := c.activity.ListActivity(ctx, connect.NewRequest(&taskboardv1.ListActivityRequest{
		TaskID: taskID,
		Limit:  limit,
		Offset: offset,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return resp.Msg, nil
}

// Employees adapts the employee service to employee.Source so an
// employee.Directory can resolve names on the client side.
func (c *Client) Employees() employee.Source {
	return employeeSource{c.employees}
}

type employeeSource struct {
	client taskboardv1connect.EmployeeServiceClient
}

func (s employeeSource) Get(ctx context.Context, id string) (*employee.Employee, error) {
	resp, err := s.client.GetEmployee(ctx, connect.NewRequest(&taskboardv1.GetEmployeeRequest{ID: id}))
	if err != nil {
		return nil, err
	}
	e := resp.Msg.Employee
	return &employee.Employee{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Designation: e.Designation,
		ManagerID:   e.ManagerID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}

// headerInterceptor attaches the bearer token and active role to every call.
type headerInterceptor struct {
	token string
	role  string
}

func (i *headerInterceptor) set(h http.Header) {
	if i.token != "" {
		h.Set("Authorization", "Bearer "+i.token)
	}
	if i.role != "" {
		h.Set(taskboardv1.RoleHeader, i.role)
	}
}

func (i *headerInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		i.set(req.Header())
		return next(ctx, req)
	}
}

func (i *headerInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		i.set(conn.RequestHeader())
		return conn
	}
}

func (i *headerInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
