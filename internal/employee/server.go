package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ taskboardv1connect.EmployeeServiceHandler = (*Server)(nil)

type Server struct {
	repo            Repository
	users           user.Repository
	defaultPassword string
	emailDomain     string
}

// NewServer creates the employee service. New employees get a login with
// the developer role and defaultPassword.
func NewServer(repo Repository, users user.Repository, defaultPassword, emailDomain string) *Server {
	return &Server{
		repo:            repo,
		users:           users,
		defaultPassword: defaultPassword,
		emailDomain:     emailDomain,
	}
}

func (s *Server) CreateEmployee(ctx context.Context, req *connect.Request[taskboardv1.CreateEmployeeRequest]) (*connect.Response[taskboardv1.CreateEmployeeResponse], error) {
	if _, err := actor.RequireRole(ctx, "only Admin can add employees", transition.RoleAdmin); err != nil {
		return nil, err
	}
	e := &Employee{
		Name:        strings.TrimSpace(req.Msg.Name),
		Email:       strings.TrimSpace(req.Msg.Email),
		Designation: strings.TrimSpace(req.Msg.Designation),
		ManagerID:   strings.TrimSpace(req.Msg.ManagerID),
	}
	if err := s.validate(ctx, e); err != nil {
		return nil, err
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now

	hash, err := user.HashPassword(s.defaultPassword)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	u := &user.User{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: hash,
		Roles:        []transition.Role{transition.RoleDeveloper},
		Status:       user.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if delErr := s.repo.Delete(ctx, e.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return nil, err
	}
	slog.InfoContext(ctx, "employee created", "employee_id", e.ID)
	return connect.NewResponse(&taskboardv1.CreateEmployeeResponse{
		Employee: ToProto(e),
		User:     user.ToProto(u),
	}), nil
}

func (s *Server) ListEmployees(ctx context.Context, _ *connect.Request[taskboardv1.ListEmployeesRequest]) (*connect.Response[taskboardv1.ListEmployeesResponse], error) {
	a, err := actor.RequireRole(ctx, "unauthorized access", transition.RoleAdmin, transition.RoleManager)
	if err != nil {
		return nil, err
	}
	managerID := ""
	if a.Is(transition.RoleManager) {
		managerID = a.UserID
	}
	list, err := s.repo.List(ctx, managerID)
	if err != nil {
		return nil, err
	}
	out := make([]*taskboardv1.Employee, len(list))
	for i, e := range list {
		out[i] = ToProto(e)
	}
	return connect.NewResponse(&taskboardv1.ListEmployeesResponse{Employees: out}), nil
}

func (s *Server) GetEmployee(ctx context.Context, req *connect.Request[taskboardv1.GetEmployeeRequest]) (*connect.Response[taskboardv1.GetEmployeeResponse], error) {
	if _, err := actor.Require(ctx); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskboardv1.GetEmployeeResponse{Employee: ToProto(e)}), nil
}

func (s *Server) UpdateEmployee(ctx context.Context, req *connect.Request[taskboardv1.UpdateEmployeeRequest]) (*connect.Response[taskboardv1.UpdateEmployeeResponse], error) {
	if _, err := actor.RequireRole(ctx, "only Admin can update employee details", transition.RoleAdmin); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if req.Msg.Name != nil {
		e.Name = strings.TrimSpace(*req.Msg.Name)
	}
	if req.Msg.Email != nil {
		e.Email = strings.TrimSpace(*req.Msg.Email)
	}
	if req.Msg.Designation != nil {
		e.Designation = strings.TrimSpace(*req.Msg.Designation)
	}
	if req.Msg.ManagerID != nil {
		e.ManagerID = strings.TrimSpace(*req.Msg.ManagerID)
	}
	if err := s.validate(ctx, e); err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	// Keep the login in sync with the directory entry.
	if u, err := s.users.Get(ctx, e.ID); err == nil && (u.Name != e.Name || u.Email != e.Email) {
		u.Name, u.Email, u.UpdatedAt = e.Name, e.Email, e.UpdatedAt
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	slog.InfoContext(ctx, "employee updated", "employee_id", e.ID)
	return connect.NewResponse(&taskboardv1.UpdateEmployeeResponse{Employee: ToProto(e)}), nil
}

func (s *Server) DeleteEmployee(ctx context.Context, req *connect.Request[taskboardv1.DeleteEmployeeRequest]) (*connect.Response[taskboardv1.DeleteEmployeeResponse], error) {
	a, err := actor.RequireRole(ctx, "only Admin can delete employees", transition.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == a.UserID {
		return nil, cerr.NewError(cerr.FailedPrecondition, "cannot delete yourself", nil)
	}
	reports, err := s.repo.List(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if len(reports) > 0 {
		return nil, cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("employee still manages %d employees", len(reports)), nil)
	}
	if err := s.repo.Delete(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, req.Msg.ID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}
	slog.InfoContext(ctx, "employee deleted", "employee_id", req.Msg.ID)
	return connect.NewResponse(&taskboardv1.DeleteEmployeeResponse{}), nil
}

// validate checks field formats and that the manager exists. An employee may
// name itself as manager only when it already exists (the first admin).
func (s *Server) validate(ctx context.Context, e *Employee) error {
	if vs := Validate(e, s.emailDomain); len(vs) > 0 {
		return cerr.NewValidationError("invalid employee", vs)
	}
	if e.ManagerID == e.ID {
		return nil
	}
	if _, err := s.repo.Get(ctx, e.ManagerID); err != nil {
		if cerr.IsCode(err, cerr.NotFound) || cerr.IsCode(err, cerr.InvalidArgument) {
			return cerr.NewValidationError("invalid employee", []cerr.Violation{{Field: "managerId", Message: "manager not found"}})
		}
		return err
	}
	return nil
}

func ToProto(e *Employee) *taskboardv1.Employee {
	return &taskboardv1.Employee{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Designation: e.Designation,
		ManagerID:   e.ManagerID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
