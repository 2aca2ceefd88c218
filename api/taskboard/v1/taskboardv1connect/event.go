package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const EventServiceName = "taskboard.v1.EventService"

const (
	EventServiceSubscribeEventsProcedure = "/taskboard.v1.EventService/SubscribeEvents"
)

type EventServiceHandler interface {
	SubscribeEvents(context.Context, *connect.Request[v1.SubscribeEventsRequest], *connect.ServerStream[v1.Event]) error
}

func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + EventServiceName + "/", routes{
		EventServiceSubscribeEventsProcedure: connect.NewServerStreamHandler(EventServiceSubscribeEventsProcedure, svc.SubscribeEvents, opts...),
	}
}

type EventServiceClient interface {
	SubscribeEvents(context.Context, *connect.Request[v1.SubscribeEventsRequest]) (*connect.ServerStreamForClient[v1.Event], error)
}

func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EventServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &eventServiceClient{
		subscribeEvents: connect.NewClient[v1.SubscribeEventsRequest, v1.Event](httpClient, baseURL+EventServiceSubscribeEventsProcedure, opts...),
	}
}

type eventServiceClient struct {
	subscribeEvents *connect.Client[v1.SubscribeEventsRequest, v1.Event]
}

func (c *eventServiceClient) SubscribeEvents(ctx context.Context, req *connect.Request[v1.SubscribeEventsRequest]) (*connect.ServerStreamForClient[v1.Event], error) {
	return c.subscribeEvents.CallServerStream(ctx, req)
}
