package taskboardv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/jsoncodec"
)

const RemarkServiceName = "taskboard.v1.RemarkService"

const (
	RemarkServiceCreateRemarkProcedure = "/taskboard.v1.RemarkService/CreateRemark"
	RemarkServiceListRemarksProcedure  = "/taskboard.v1.RemarkService/ListRemarks"
	RemarkServiceUpdateRemarkProcedure = "/taskboard.v1.RemarkService/UpdateRemark"
	RemarkServiceDeleteRemarkProcedure = "/taskboard.v1.RemarkService/DeleteRemark"
)

type RemarkServiceHandler interface {
	CreateRemark(context.Context, *connect.Request[v1.CreateRemarkRequest]) (*connect.Response[v1.CreateRemarkResponse], error)
	ListRemarks(context.Context, *connect.Request[v1.ListRemarksRequest]) (*connect.Response[v1.ListRemarksResponse], error)
	UpdateRemark(context.Context, *connect.Request[v1.UpdateRemarkRequest]) (*connect.Response[v1.UpdateRemarkResponse], error)
	DeleteRemark(context.Context, *connect.Request[v1.DeleteRemarkRequest]) (*connect.Response[v1.DeleteRemarkResponse], error)
}

func NewRemarkServiceHandler(svc RemarkServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(jsoncodec.HandlerOptions(), opts...)
	return "/" + RemarkServiceName + "/", routes{
		RemarkServiceCreateRemarkProcedure: connect.NewUnaryHandler(RemarkServiceCreateRemarkProcedure, svc.CreateRemark, opts...),
		RemarkServiceListRemarksProcedure:  connect.NewUnaryHandler(RemarkServiceListRemarksProcedure, svc.ListRemarks, opts...),
		RemarkServiceUpdateRemarkProcedure: connect.NewUnaryHandler(RemarkServiceUpdateRemarkProcedure, svc.UpdateRemark, opts...),
		RemarkServiceDeleteRemarkProcedure: connect.NewUnaryHandler(RemarkServiceDeleteRemarkProcedure, svc.DeleteRemark, opts...),
	}
}

type RemarkServiceClient interface {
	CreateRemark(context.Context, *connect.Request[v1.CreateRemarkRequest]) (*connect.Response[v1.CreateRemarkResponse], error)
	ListRemarks(context.Context, *connect.Request[v1.ListRemarksRequest]) (*connect.Response[v1.ListRemarksResponse], error)
	UpdateRemark(context.Context, *connect.Request[v1.UpdateRemarkRequest]) (*connect.Response[v1.UpdateRemarkResponse], error)
	DeleteRemark(context.Context, *connect.Request[v1.DeleteRemarkRequest]) (*connect.Response[v1.DeleteRemarkResponse], error)
}

func NewRemarkServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RemarkServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{jsoncodec.ClientOption()}, opts...)
	return &remarkServiceClient{
		createRemark: connect.NewClient[v1.CreateRemarkRequest, v1.CreateRemarkResponse](httpClient, baseURL+RemarkServiceCreateRemarkProcedure, opts...),
		listRemarks:  connect.NewClient[v1.ListRemarksRequest, v1.ListRemarksResponse](httpClient, baseURL+RemarkServiceListRemarksProcedure, opts...),
		updateRemark: connect.NewClient[v1.UpdateRemarkRequest, v1.UpdateRemarkResponse](httpClient, baseURL+RemarkServiceUpdateRemarkProcedure, opts...),
		deleteRemark: connect.NewClient[v1.DeleteRemarkRequest, v1.DeleteRemarkResponse](httpClient, baseURL+RemarkServiceDeleteRemarkProcedure, opts...),
	}
}

type remarkServiceClient struct {
	createRemark *connect.Client[v1.CreateRemarkRequest, v1.CreateRemarkResponse]
	listRemarks  *connect.Client[v1.ListRemarksRequest, v1.ListRemarksResponse]
	updateRemark *connect.Client[v1.UpdateRemarkRequest, v1.UpdateRemarkResponse]
	deleteRemark *connect.Client[v1.DeleteRemarkRequest, v1.DeleteRemarkResponse]
}

func (c *remarkServiceClient) CreateRemark(ctx context.Context, req *connect.Request[v1.CreateRemarkRequest]) (*connect.Response[v1.CreateRemarkResponse], error) {
	return c.createRemark.CallUnary(ctx, req)
}

func (c *remarkServiceClient) ListRemarks(ctx context.Context, req *connect.Request[v1.ListRemarksRequest]) (*connect.Response[v1.ListRemarksResponse], error) {
	return c.listRemarks.CallUnary(ctx, req)
}

func (c *remarkServiceClient) UpdateRemark(ctx context.Context, req *connect.Request[v1.UpdateRemarkRequest]) (*connect.Response[v1.UpdateRemarkResponse], error) {
	return c.updateRemark.CallUnary(ctx, req)
}

func (c *remarkServiceClient) DeleteRemark(ctx context.Context, req *connect.Request[v1.DeleteRemarkRequest]) (*connect.Response[v1.DeleteRemarkResponse], error) {
	return c.deleteRemark.CallUnary(ctx, req)
}
