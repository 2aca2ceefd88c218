package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const TaskServiceName = "taskboard.v1.TaskService"

const (
	TaskServiceCreateTaskProcedure         = "/taskboard.v1.TaskService/CreateTask"
	TaskServiceGetTaskProcedure            = "/taskboard.v1.TaskService/GetTask"
	TaskServiceListTasksProcedure          = "/taskboard.v1.TaskService/ListTasks"
	TaskServiceUpdateTaskProcedure         = "/taskboard.v1.TaskService/UpdateTask"
	TaskServiceMoveTaskProcedure           = "/taskboard.v1.TaskService/MoveTask"
	TaskServiceCheckTransitionProcedure    = "/taskboard.v1.TaskService/CheckTransition"
	TaskServiceUpdateTaskPriorityProcedure = "/taskboard.v1.TaskService/UpdateTaskPriority"
	TaskServiceDeleteTaskProcedure         = "/taskboard.v1.TaskService/DeleteTask"
)

type TaskServiceHandler interface {
	CreateTask(context.Context, *connect.Request[v1.CreateTaskRequest]) (*connect.Response[v1.CreateTaskResponse], error)
	GetTask(context.Context, *connect.Request[v1.GetTaskRequest]) (*connect.Response[v1.GetTaskResponse], error)
	ListTasks(context.Context, *connect.Request[v1.ListTasksRequest]) (*connect.Response[v1.ListTasksResponse], error)
	UpdateTask(context.Context, *connect.Request[v1.UpdateTaskRequest]) (*connect.Response[v1.UpdateTaskResponse], error)
	MoveTask(context.Context, *connect.Request[v1.MoveTaskRequest]) (*connect.Response[v1.MoveTaskResponse], error)
	CheckTransition(context.Context, *connect.Request[v1.CheckTransitionRequest]) (*connect.Response[v1.CheckTransitionResponse], error)
	UpdateTaskPriority(context.Context, *connect.Request[v1.UpdateTaskPriorityRequest]) (*connect.Response[v1.UpdateTaskPriorityResponse], error)
	DeleteTask(context.Context, *connect.Request[v1.DeleteTaskRequest]) (*connect.Response[v1.DeleteTaskResponse], error)
}

func NewTaskServiceHandler(svc TaskServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + TaskServiceName + "/", routes{
		TaskServiceCreateTaskProcedure:         connect.NewUnaryHandler(TaskServiceCreateTaskProcedure, svc.CreateTask, opts...),
		TaskServiceGetTaskProcedure:            connect.NewUnaryHandler(TaskServiceGetTaskProcedure, svc.GetTask, opts...),
		TaskServiceListTasksProcedure:          connect.NewUnaryHandler(TaskServiceListTasksProcedure, svc.ListTasks, opts...),
		TaskServiceUpdateTaskProcedure:         connect.NewUnaryHandler(TaskServiceUpdateTaskProcedure, svc.UpdateTask, opts...),
		TaskServiceMoveTaskProcedure:           connect.NewUnaryHandler(TaskServiceMoveTaskProcedure, svc.MoveTask, opts...),
		TaskServiceCheckTransitionProcedure:    connect.NewUnaryHandler(TaskServiceCheckTransitionProcedure, svc.CheckTransition, opts...),
		TaskServiceUpdateTaskPriorityProcedure: connect.NewUnaryHandler(TaskServiceUpdateTaskPriorityProcedure, svc.UpdateTaskPriority, opts...),
		TaskServiceDeleteTaskProcedure:         connect.NewUnaryHandler(TaskServiceDeleteTaskProcedure, svc.DeleteTask, opts...),
	}
}

type TaskServiceClient interface {
	CreateTask(context.Context, *connect.Request[v1.CreateTaskRequest]) (*connect.Response[v1.CreateTaskResponse], error)
	GetTask(context.Context, *connect.Request[v1.GetTaskRequest]) (*connect.Response[v1.GetTaskResponse], error)
	ListTasks(context.Context, *connect.Request[v1.ListTasksRequest]) (*connect.Response[v1.ListTasksResponse], error)
	UpdateTask(context.Context, *connect.Request[v1.UpdateTaskRequest]) (*connect.Response[v1.UpdateTaskResponse], error)
	MoveTask(context.Context, *connect.Request[v1.MoveTaskRequest]) (*connect.Response[v1.MoveTaskResponse], error)
	CheckTransition(context.Context, *connect.Request[v1.CheckTransitionRequest]) (*connect.Response[v1.CheckTransitionResponse], error)
	UpdateTaskPriority(context.Context, *connect.Request[v1.UpdateTaskPriorityRequest]) (*connect.Response[v1.UpdateTaskPriorityResponse], error)
	DeleteTask(context.Context, *connect.Request[v1.DeleteTaskRequest]) (*connect.Response[v1.DeleteTaskResponse], error)
}

func NewTaskServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TaskServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &taskServiceClient{
		createTask:         connect.NewClient[v1.CreateTaskRequest, v1.CreateTaskResponse](httpClient, baseURL+TaskServiceCreateTaskProcedure, opts...),
		getTask:            connect.NewClient[v1.GetTaskRequest, v1.GetTaskResponse](httpClient, baseURL+TaskServiceGetTaskProcedure, opts...),
		listTasks:          connect.NewClient[v1.ListTasksRequest, v1.ListTasksResponse](httpClient, baseURL+TaskServiceListTasksProcedure, opts...),
		updateTask:         connect.NewClient[v1.UpdateTaskRequest, v1.UpdateTaskResponse](httpClient, baseURL+TaskServiceUpdateTaskProcedure, opts...),
		moveTask:           connect.NewClient[v1.MoveTaskRequest, v1.MoveTaskResponse](httpClient, baseURL+TaskServiceMoveTaskProcedure, opts...),
		checkTransition:    connect.NewClient[v1.CheckTransitionRequest, v1.CheckTransitionResponse](httpClient, baseURL+TaskServiceCheckTransitionProcedure, opts...),
		updateTaskPriority: connect.NewClient[v1.UpdateTaskPriorityRequest, v1.UpdateTaskPriorityResponse](httpClient, baseURL+TaskServiceUpdateTaskPriorityProcedure, opts...),
		deleteTask:         connect.NewClient[v1.DeleteTaskRequest, v1.DeleteTaskResponse](httpClient, baseURL+TaskServiceDeleteTaskProcedure, opts...),
	}
}

type taskServiceClient struct {
	createTask         *connect.Client[v1.CreateTaskRequest, v1.CreateTaskResponse]
	getTask            *connect.Client[v1.GetTaskRequest, v1.GetTaskResponse]
	listTasks          *connect.Client[v1.ListTasksRequest, v1.ListTasksResponse]
	updateTask         *connect.Client[v1.UpdateTaskRequest, v1.UpdateTaskResponse]
	moveTask           *connect.Client[v1.MoveTaskRequest, v1.MoveTaskResponse]
	checkTransition    *connect.Client[v1.CheckTransitionRequest, v1.CheckTransitionResponse]
	updateTaskPriority *connect.Client[v1.UpdateTaskPriorityRequest, v1.UpdateTaskPriorityResponse]
	deleteTask         *connect.Client[v1.DeleteTaskRequest, v1.DeleteTaskResponse]
}

func (c *taskServiceClient) CreateTask(ctx context.Context, req *connect.Request[v1.CreateTaskRequest]) (*connect.Response[v1.CreateTaskResponse], error) {
	return c.createTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) GetTask(ctx context.Context, req *connect.Request[v1.GetTaskRequest]) (*connect.Response[v1.GetTaskResponse], error) {
	return c.getTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) ListTasks(ctx context.Context, req *connect.Request[v1.ListTasksRequest]) (*connect.Response[v1.ListTasksResponse], error) {
	return c.listTasks.CallUnary(ctx, req)
}

func (c *taskServiceClient) UpdateTask(ctx context.Context, req *connect.Request[v1.UpdateTaskRequest]) (*connect.Response[v1.UpdateTaskResponse], error) {
	return c.updateTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) MoveTask(ctx context.Context, req *connect.Request[v1.MoveTaskRequest]) (*connect.Response[v1.MoveTaskResponse], error) {
	return c.moveTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) CheckTransition(ctx context.Context, req *connect.Request[v1.CheckTransitionRequest]) (*connect.Response[v1.CheckTransitionResponse], error) {
	return c.checkTransition.CallUnary(ctx, req)
}

func (c *taskServiceClient) UpdateTaskPriority(ctx context.Context, req *connect.Request[v1.UpdateTaskPriorityRequest]) (*connect.Response[v1.UpdateTaskPriorityResponse], error) {
	return c.updateTaskPriority.CallUnary(ctx, req)
}

func (c *taskServiceClient) DeleteTask(ctx context.Context, req *connect.Request[v1.DeleteTaskRequest]) (*connect.Response[v1.DeleteTaskResponse], error) {
	return c.deleteTask.CallUnary(ctx, req)
}
