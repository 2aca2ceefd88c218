package user

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ taskboardv1connect.UserServiceHandler = (*Server)(nil)

type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

func (s *Server) ListUsers(ctx context.Context, _ *connect.Request[taskboardv1.ListUsersRequest]) (*connect.Response[taskboardv1.ListUsersResponse], error) {
	if _, err := actor.RequireRole(ctx, "only Admin can list users", transition.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskboardv1.ListUsersResponse{Users: toProtos(users)}), nil
}

func (s *Server) ListUsersByRole(ctx context.Context, req *connect.Request[taskboardv1.ListUsersByRoleRequest]) (*connect.Response[taskboardv1.ListUsersByRoleResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	role, ok := NormalizeRole(req.Msg.Role)
	if !ok {
		return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown role %q", req.Msg.Role), nil)
	}
	if !a.Is(transition.RoleAdmin) && !a.Holds(role) {
		return nil, cerr.NewError(cerr.PermissionDenied, "the user doesn't have the mentioned role", nil)
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := users[:0]
	for _, u := range users {
		if u.HasRole(role) && u.Active() {
			matched = append(matched, u)
		}
	}
	return connect.NewResponse(&taskboardv1.ListUsersByRoleResponse{Users: toProtos(matched)}), nil
}

func (s *Server) GetUser(ctx context.Context, req *connect.Request[taskboardv1.GetUserRequest]) (*connect.Response[taskboardv1.GetUserResponse], error) {
	if _, err := requireAdminOrSelf(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	u, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskboardv1.GetUserResponse{User: ToProto(u)}), nil
}

func (s *Server) UpdateUser(ctx context.Context, req *connect.Request[taskboardv1.UpdateUserRequest]) (*connect.Response[taskboardv1.UpdateUserResponse], error) {
	a, err := requireAdminOrSelf(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	isAdmin := a.Is(transition.RoleAdmin)
	if !isAdmin && (req.Msg.Roles != nil || req.Msg.Status != nil) {
		return nil, cerr.NewError(cerr.PermissionDenied, "only Admin can change roles or status", nil)
	}

	u, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if req.Msg.Name != nil {
		name := strings.TrimSpace(*req.Msg.Name)
		if name == "" {
			return nil, cerr.NewError(cerr.InvalidArgument, "name must not be empty", nil)
		}
		u.Name = name
	}
	if req.Msg.Roles != nil {
		roles, rejected := NormalizeRoles(req.Msg.Roles)
		if len(rejected) > 0 {
			violations := make([]cerr.Violation, 0, len(rejected))
			for _, r := range rejected {
				violations = append(violations, cerr.Violation{Field: "roles", Message: fmt.Sprintf("unknown role %q", r)})
			}
			return nil, cerr.NewValidationError("invalid roles", violations)
		}
		if len(roles) == 0 {
			return nil, cerr.NewError(cerr.InvalidArgument, "at least one role is required", nil)
		}
		if u.ID == a.UserID && !slices.Contains(roles, transition.RoleAdmin) {
			return nil, cerr.NewError(cerr.FailedPrecondition, "cannot remove your own Admin role", nil)
		}
		u.Roles = roles
	}
	if req.Msg.Status != nil {
		st := Status(strings.ToLower(strings.TrimSpace(*req.Msg.Status)))
		if !st.Valid() {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown status %q", *req.Msg.Status), nil)
		}
		if u.ID == a.UserID && st != StatusActive {
			return nil, cerr.NewError(cerr.FailedPrecondition, "cannot deactivate yourself", nil)
		}
		u.Status = st
	}
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user updated", "user_id", u.ID)
	return connect.NewResponse(&taskboardv1.UpdateUserResponse{User: ToProto(u)}), nil
}

func (s *Server) DeleteUser(ctx context.Context, req *connect.Request[taskboardv1.DeleteUserRequest]) (*connect.Response[taskboardv1.DeleteUserResponse], error) {
	if _, err := requireAdminOrSelf(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", req.Msg.ID)
	return connect.NewResponse(&taskboardv1.DeleteUserResponse{}), nil
}

func (s *Server) ChangePassword(ctx context.Context, req *connect.Request[taskboardv1.ChangePasswordRequest]) (*connect.Response[taskboardv1.ChangePasswordResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Get(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, req.Msg.OldPassword) {
		return nil, cerr.NewError(cerr.PermissionDenied, "old password is incorrect", nil)
	}
	hash, err := HashPassword(req.Msg.NewPassword)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskboardv1.ChangePasswordResponse{}), nil
}

// GrantRole adds role to the user if missing. Assigning a task grants the
// assignee the developer role and the reviewer the manager role.
func (s *Server) GrantRole(ctx context.Context, userID string, role transition.Role) error {
	if !role.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown role %q", role), nil)
	}
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !u.AddRole(role) {
		return nil
	}
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	slog.InfoContext(ctx, "role granted", "user_id", userID, "role", role)
	return nil
}

func requireAdminOrSelf(ctx context.Context, userID string) (actor.Actor, error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return actor.Actor{}, err
	}
	if userID == "" {
		return actor.Actor{}, cerr.NewError(cerr.InvalidArgument, "user id is required", nil)
	}
	if a.UserID != userID && !a.Is(transition.RoleAdmin) {
		return actor.Actor{}, cerr.NewError(cerr.PermissionDenied, "not allowed to access another user", nil)
	}
	return a, nil
}

func ToProto(u *User) *taskboardv1.User {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = r.String()
	}
	return &taskboardv1.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     roles,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toProtos(users []*User) []*taskboardv1.User {
	out := make([]*taskboardv1.User, len(users))
	for i, u := range users {
		out[i] = ToProto(u)
	}
	return out
}
