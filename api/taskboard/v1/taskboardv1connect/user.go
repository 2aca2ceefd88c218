package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const UserServiceName = "taskboard.v1.UserService"

const (
	UserServiceListUsersProcedure       = "/taskboard.v1.UserService/ListUsers"
	UserServiceListUsersByRoleProcedure = "/taskboard.v1.UserService/ListUsersByRole"
	UserServiceGetUserProcedure         = "/taskboard.v1.UserService/GetUser"
	UserServiceUpdateUserProcedure      = "/taskboard.v1.UserService/UpdateUser"
	UserServiceDeleteUserProcedure      = "/taskboard.v1.UserService/DeleteUser"
	UserServiceChangePasswordProcedure  = "/taskboard.v1.UserService/ChangePassword"
)

type UserServiceHandler interface {
	ListUsers(context.Context, *connect.Request[v1.ListUsersRequest]) (*connect.Response[v1.ListUsersResponse], error)
	ListUsersByRole(context.Context, *connect.Request[v1.ListUsersByRoleRequest]) (*connect.Response[v1.ListUsersByRoleResponse], error)
	GetUser(context.Context, *connect.Request[v1.GetUserRequest]) (*connect.Response[v1.GetUserResponse], error)
	UpdateUser(context.Context, *connect.Request[v1.UpdateUserRequest]) (*connect.Response[v1.UpdateUserResponse], error)
	DeleteUser(context.Context, *connect.Request[v1.DeleteUserRequest]) (*connect.Response[v1.DeleteUserResponse], error)
	ChangePassword(context.Context, *connect.Request[v1.ChangePasswordRequest]) (*connect.Response[v1.ChangePasswordResponse], error)
}

func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + UserServiceName + "/", routes{
		UserServiceListUsersProcedure:       connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...),
		UserServiceListUsersByRoleProcedure: connect.NewUnaryHandler(UserServiceListUsersByRoleProcedure, svc.ListUsersByRole, opts...),
		UserServiceGetUserProcedure:         connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...),
		UserServiceUpdateUserProcedure:      connect.NewUnaryHandler(UserServiceUpdateUserProcedure, svc.UpdateUser, opts...),
		UserServiceDeleteUserProcedure:      connect.NewUnaryHandler(UserServiceDeleteUserProcedure, svc.DeleteUser, opts...),
		UserServiceChangePasswordProcedure:  connect.NewUnaryHandler(UserServiceChangePasswordProcedure, svc.ChangePassword, opts...),
	}
}

type UserServiceClient interface {
	ListUsers(context.Context, *connect.Request[v1.ListUsersRequest]) (*connect.Response[v1.ListUsersResponse], error)
	ListUsersByRole(context.Context, *connect.Request[v1.ListUsersByRoleRequest]) (*connect.Response[v1.ListUsersByRoleResponse], error)
	GetUser(context.Context, *connect.Request[v1.GetUserRequest]) (*connect.Response[v1.GetUserResponse], error)
	UpdateUser(context.Context, *connect.Request[v1.UpdateUserRequest]) (*connect.Response[v1.UpdateUserResponse], error)
	DeleteUser(context.Context, *connect.Request[v1.DeleteUserRequest]) (*connect.Response[v1.DeleteUserResponse], error)
	ChangePassword(context.Context, *connect.Request[v1.ChangePasswordRequest]) (*connect.Response[v1.ChangePasswordResponse], error)
}

func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &userServiceClient{
		listUsers:       connect.NewClient[v1.ListUsersRequest, v1.ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
		listUsersByRole: connect.NewClient[v1.ListUsersByRoleRequest, v1.ListUsersByRoleResponse](httpClient, baseURL+UserServiceListUsersByRoleProcedure, opts...),
		getUser:         connect.NewClient[v1.GetUserRequest, v1.GetUserResponse](httpClient, baseURL+UserServiceGetUserProcedure, opts...),
		updateUser:      connect.NewClient[v1.UpdateUserRequest, v1.UpdateUserResponse](httpClient, baseURL+UserServiceUpdateUserProcedure, opts...),
		deleteUser:      connect.NewClient[v1.DeleteUserRequest, v1.DeleteUserResponse](httpClient, baseURL+UserServiceDeleteUserProcedure, opts...),
		changePassword:  connect.NewClient[v1.ChangePasswordRequest, v1.ChangePasswordResponse](httpClient, baseURL+UserServiceChangePasswordProcedure, opts...),
	}
}

type userServiceClient struct {
	listUsers       *connect.Client[v1.ListUsersRequest, v1.ListUsersResponse]
	listUsersByRole *connect.Client[v1.ListUsersByRoleRequest, v1.ListUsersByRoleResponse]
	getUser         *connect.Client[v1.GetUserRequest, v1.GetUserResponse]
	updateUser      *connect.Client[v1.UpdateUserRequest, v1.UpdateUserResponse]
	deleteUser      *connect.Client[v1.DeleteUserRequest, v1.DeleteUserResponse]
	changePassword  *connect.Client[v1.ChangePasswordRequest, v1.ChangePasswordResponse]
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[v1.ListUsersRequest]) (*connect.Response[v1.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *userServiceClient) ListUsersByRole(ctx context.Context, req *connect.Request[v1.ListUsersByRoleRequest]) (*connect.Response[v1.ListUsersByRoleResponse], error) {
	return c.listUsersByRole.CallUnary(ctx, req)
}

func (c *userServiceClient) GetUser(ctx context.Context, req *connect.Request[v1.GetUserRequest]) (*connect.Response[v1.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *userServiceClient) UpdateUser(ctx context.Context, req *connect.Request[v1.UpdateUserRequest]) (*connect.Response[v1.UpdateUserResponse], error) {
	return c.updateUser.CallUnary(ctx, req)
}

func (c *userServiceClient) DeleteUser(ctx context.Context, req *connect.Request[v1.DeleteUserRequest]) (*connect.Response[v1.DeleteUserResponse], error) {
	return c.deleteUser.CallUnary(ctx, req)
}

func (c *userServiceClient) ChangePassword(ctx context.Context, req *connect.Request[v1.ChangePasswordRequest]) (*connect.Response[v1.ChangePasswordResponse], error) {
	return c.changePassword.CallUnary(ctx, req)
}
