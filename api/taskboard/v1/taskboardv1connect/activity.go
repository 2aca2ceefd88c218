package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const ActivityServiceName = "taskboard.v1.ActivityService"

const (
	ActivityServiceListActivityProcedure = "/taskboard.v1.ActivityService/ListActivity"
)

type ActivityServiceHandler interface {
	ListActivity(context.Context, *connect.Request[v1.ListActivityRequest]) (*connect.Response[v1.ListActivityResponse], error)
}

func NewActivityServiceHandler(svc ActivityServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + ActivityServiceName + "/", routes{
		ActivityServiceListActivityProcedure: connect.NewUnaryHandler(ActivityServiceListActivityProcedure, svc.ListActivity, opts...),
	}
}

type ActivityServiceClient interface {
	ListActivity(context.Context, *connect.Request[v1.ListActivityRequest]) (*connect.Response[v1.ListActivityResponse], error)
}

func NewActivityServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ActivityServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &activityServiceClient{
		listActivity: connect.NewClient[v1.ListActivityRequest, v1.ListActivityResponse](httpClient, baseURL+ActivityServiceListActivityProcedure, opts...),
	}
}

type activityServiceClient struct {
	listActivity *connect.Client[v1.ListActivityRequest, v1.ListActivityResponse]
}

func (c *activityServiceClient) ListActivity(ctx context.Context, req *connect.Request[v1.ListActivityRequest]) (*connect.Response[v1.ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}
