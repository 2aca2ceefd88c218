package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const EmployeeServiceName = "taskboard.v1.EmployeeService"

const (
	EmployeeServiceCreateEmployeeProcedure = "/taskboard.v1.EmployeeService/CreateEmployee"
	EmployeeServiceListEmployeesProcedure  = "/taskboard.v1.EmployeeService/ListEmployees"
	EmployeeServiceGetEmployeeProcedure    = "/taskboard.v1.EmployeeService/GetEmployee"
	EmployeeServiceUpdateEmployeeProcedure = "/taskboard.v1.EmployeeService/UpdateEmployee"
	EmployeeServiceDeleteEmployeeProcedure = "/taskboard.v1.EmployeeService/DeleteEmployee"
)

type EmployeeServiceHandler interface {
	CreateEmployee(context.Context, *connect.Request[v1.CreateEmployeeRequest]) (*connect.Response[v1.CreateEmployeeResponse], error)
	ListEmployees(context.Context, *connect.Request[v1.ListEmployeesRequest]) (*connect.Response[v1.ListEmployeesResponse], error)
	GetEmployee(context.Context, *connect.Request[v1.GetEmployeeRequest]) (*connect.Response[v1.GetEmployeeResponse], error)
	UpdateEmployee(context.Context, *connect.Request[v1.UpdateEmployeeRequest]) (*connect.Response[v1.UpdateEmployeeResponse], error)
	DeleteEmployee(context.Context, *connect.Request[v1.DeleteEmployeeRequest]) (*connect.Response[v1.DeleteEmployeeResponse], error)
}

func NewEmployeeServiceHandler(svc EmployeeServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + EmployeeServiceName + "/", routes{
		EmployeeServiceCreateEmployeeProcedure: connect.NewUnaryHandler(EmployeeServiceCreateEmployeeProcedure, svc.CreateEmployee, opts...),
		EmployeeServiceListEmployeesProcedure:  connect.NewUnaryHandler(EmployeeServiceListEmployeesProcedure, svc.ListEmployees, opts...),
		EmployeeServiceGetEmployeeProcedure:    connect.NewUnaryHandler(EmployeeServiceGetEmployeeProcedure, svc.GetEmployee, opts...),
		EmployeeServiceUpdateEmployeeProcedure: connect.NewUnaryHandler(EmployeeServiceUpdateEmployeeProcedure, svc.UpdateEmployee, opts...),
		EmployeeServiceDeleteEmployeeProcedure: connect.NewUnaryHandler(EmployeeServiceDeleteEmployeeProcedure, svc.DeleteEmployee, opts...),
	}
}

type EmployeeServiceClient interface {
	CreateEmployee(context.Context, *connect.Request[v1.CreateEmployeeRequest]) (*connect.Response[v1.CreateEmployeeResponse], error)
	ListEmployees(context.Context, *connect.Request[v1.ListEmployeesRequest]) (*connect.Response[v1.ListEmployeesResponse], error)
	GetEmployee(context.Context, *connect.Request[v1.GetEmployeeRequest]) (*connect.Response[v1.GetEmployeeResponse], error)
	UpdateEmployee(context.Context, *connect.Request[v1.UpdateEmployeeRequest]) (*connect.Response[v1.UpdateEmployeeResponse], error)
	DeleteEmployee(context.Context, *connect.Request[v1.DeleteEmployeeRequest]) (*connect.Response[v1.DeleteEmployeeResponse], error)
}

func NewEmployeeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EmployeeServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &employeeServiceClient{
		createEmployee: connect.NewClient[v1.CreateEmployeeRequest, v1.CreateEmployeeResponse](httpClient, baseURL+EmployeeServiceCreateEmployeeProcedure, opts...),
		listEmployees:  connect.NewClient[v1.ListEmployeesRequest, v1.ListEmployeesResponse](httpClient, baseURL+EmployeeServiceListEmployeesProcedure, opts...),
		getEmployee:    connect.NewClient[v1.GetEmployeeRequest, v1.GetEmployeeResponse](httpClient, baseURL+EmployeeServiceGetEmployeeProcedure, opts...),
		updateEmployee: connect.NewClient[v1.UpdateEmployeeRequest, v1.UpdateEmployeeResponse](httpClient, baseURL+EmployeeServiceUpdateEmployeeProcedure, opts...),
		deleteEmployee: connect.NewClient[v1.DeleteEmployeeRequest, v1.DeleteEmployeeResponse](httpClient, baseURL+EmployeeServiceDeleteEmployeeProcedure, opts...),
	}
}

type employeeServiceClient struct {
	createEmployee *connect.Client[v1.CreateEmployeeRequest, v1.CreateEmployeeResponse]
	listEmployees  *connect.Client[v1.ListEmployeesRequest, v1.ListEmployeesResponse]
	getEmployee    *connect.Client[v1.GetEmployeeRequest, v1.GetEmployeeResponse]
	updateEmployee *connect.Client[v1.UpdateEmployeeRequest, v1.UpdateEmployeeResponse]
	deleteEmployee *connect.Client[v1.DeleteEmployeeRequest, v1.DeleteEmployeeResponse]
}

func (c *employeeServiceClient) CreateEmployee(ctx context.Context, req *connect.Request[v1.CreateEmployeeRequest]) (*connect.Response[v1.CreateEmployeeResponse], error) {
	return c.createEmployee.CallUnary(ctx, req)
}

func (c *employeeServiceClient) ListEmployees(ctx context.Context, req *connect.Request[v1.ListEmployeesRequest]) (*connect.Response[v1.ListEmployeesResponse], error) {
	return c.listEmployees.CallUnary(ctx, req)
}

func (c *employeeServiceClient) GetEmployee(ctx context.Context, req *connect.Request[v1.GetEmployeeRequest]) (*connect.Response[v1.GetEmployeeResponse], error) {
	return c.getEmployee.CallUnary(ctx, req)
}

func (c *employeeServiceClient) UpdateEmployee(ctx context.Context, req *connect.Request[v1.UpdateEmployeeRequest]) (*connect.Response[v1.UpdateEmployeeResponse], error) {
	return c.updateEmployee.CallUnary(ctx, req)
}

func (c *employeeServiceClient) DeleteEmployee(ctx context.Context, req *connect.Request[v1.DeleteEmployeeRequest]) (*connect.Response[v1.DeleteEmployeeResponse], error) {
	return c.deleteEmployee.CallUnary(ctx, req)
}
