package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const AuthServiceName = "taskboard.v1.AuthService"

const (
	AuthServiceLoginProcedure = "/taskboard.v1.AuthService/Login"
	AuthServiceGetMeProcedure = "/taskboard.v1.AuthService/GetMe"
)

type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[v1.LoginRequest]) (*connect.Response[v1.LoginResponse], error)
	GetMe(context.Context, *connect.Request[v1.GetMeRequest]) (*connect.Response[v1.GetMeResponse], error)
}

func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + AuthServiceName + "/", routes{
		AuthServiceLoginProcedure: connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
		AuthServiceGetMeProcedure: connect.NewUnaryHandler(AuthServiceGetMeProcedure, svc.GetMe, opts...),
	}
}

type AuthServiceClient interface {
	Login(context.Context, *connect.Request[v1.LoginRequest]) (*connect.Response[v1.LoginResponse], error)
	GetMe(context.Context, *connect.Request[v1.GetMeRequest]) (*connect.Response[v1.GetMeResponse], error)
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &authServiceClient{
		login: connect.NewClient[v1.LoginRequest, v1.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getMe: connect.NewClient[v1.GetMeRequest, v1.GetMeResponse](httpClient, baseURL+AuthServiceGetMeProcedure, opts...),
	}
}

type authServiceClient struct {
	login *connect.Client[v1.LoginRequest, v1.LoginResponse]
	getMe *connect.Client[v1.GetMeRequest, v1.GetMeResponse]
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[v1.LoginRequest]) (*connect.Response[v1.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetMe(ctx context.Context, req *connect.Request[v1.GetMeRequest]) (*connect.Response[v1.GetMeResponse], error) {
	return c.getMe.CallUnary(ctx, req)
}
