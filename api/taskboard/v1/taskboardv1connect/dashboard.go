package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const DashboardServiceName = "taskboard.v1.DashboardService"

const (
	DashboardServiceGetDashboardProcedure = "/taskboard.v1.DashboardService/GetDashboard"
)

type DashboardServiceHandler interface {
	GetDashboard(context.Context, *connect.Request[v1.GetDashboardRequest]) (*connect.Response[v1.GetDashboardResponse], error)
}

func NewDashboardServiceHandler(svc DashboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + DashboardServiceName + "/", routes{
		DashboardServiceGetDashboardProcedure: connect.NewUnaryHandler(DashboardServiceGetDashboardProcedure, svc.GetDashboard, opts...),
	}
}

type DashboardServiceClient interface {
	GetDashboard(context.Context, *connect.Request[v1.GetDashboardRequest]) (*connect.Response[v1.GetDashboardResponse], error)
}

func NewDashboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DashboardServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &dashboardServiceClient{
		getDashboard: connect.NewClient[v1.GetDashboardRequest, v1.GetDashboardResponse](httpClient, baseURL+DashboardServiceGetDashboardProcedure, opts...),
	}
}

type dashboardServiceClient struct {
	getDashboard *connect.Client[v1.GetDashboardRequest, v1.GetDashboardResponse]
}

func (c *dashboardServiceClient) GetDashboard(ctx context.Context, req *connect.Request[v1.GetDashboardRequest]) (*connect.Response[v1.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}
