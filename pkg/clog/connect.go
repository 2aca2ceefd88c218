package clog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"
)

type connectConfig struct {
	Filter func(spec connect.Spec) bool
}

type ConnectOption func(*connectConfig)

// WithConnectFilter suppresses the access line for procedures the filter
// rejects.
func WithConnectFilter(filter func(connect.Spec) bool) ConnectOption {
	return func(cfg *connectConfig) {
		cfg.Filter = filter
	}
}

func SkipHealthCheck(spec connect.Spec) bool {
	return spec.Procedure != "/grpc.health.v1.Health/Check"
}

type slogConnectInterceptor struct {
	cfg connectConfig
}

// NewSlogConnectInterceptor logs one line per unary call and two per handler
// stream (connect and finish).
func NewSlogConnectInterceptor(opts ...ConnectOption) connect.Interceptor {
	cfg := connectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &slogConnectInterceptor{cfg: cfg}
}

func (s *slogConnectInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		ctx = ContextWithSlog(ctx)
		AddAttribute(ctx, "method", req.HTTPMethod())
		addSpec(ctx, req.Spec())

		resp, err := next(ctx, req)
		s.finish(ctx, req.Spec(), start, err)
		return resp, err
	}
}

func (s *slogConnectInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (s *slogConnectInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		ctx = ContextWithSlog(ctx)
		addSpec(ctx, conn.Spec())
		slog.InfoContext(ctx, "Connected")

		err := next(ctx, conn)
		s.finish(ctx, conn.Spec(), start, err)
		return err
	}
}

func addSpec(ctx context.Context, spec connect.Spec) {
	AddAttributes(ctx, map[string]any{
		"procedure":         spec.Procedure,
		"stream_type":       spec.StreamType.String(),
		"idempotency_level": spec.IdempotencyLevel.String(),
	})
}

func (s *slogConnectInterceptor) finish(ctx context.Context, spec connect.Spec, start time.Time, err error) {
	if s.cfg.Filter != nil && !s.cfg.Filter(spec) {
		return
	}
	code := "ok"
	var cerr *connect.Error
	if err != nil {
		if !errors.As(err, &cerr) {
			cerr = connect.NewError(connect.CodeUnknown, err)
		}
		code = cerr.Code().String()
	}
	AddAttributes(ctx, map[string]any{
		"code":     code,
		"duration": time.Since(start),
	})
	if cerr == nil {
		slog.InfoContext(ctx, "Finished")
		return
	}
	logConnectError(ctx, cerr)
}

func logConnectError(ctx context.Context, cerr *connect.Error) {
	if errDetails := cerr.Details(); len(errDetails) > 0 {
		details := make([]proto.Message, 0, len(errDetails))
		for _, detail := range errDetails {
			val, err := detail.Value()
			if err != nil {
				slog.ErrorContext(ctx, "failed to convert detail value", ErrorAttributeKey, err)
				continue
			}
			details = append(details, val)
		}
		AddAttribute(ctx, "err_details", details)
	}
	slog.Log(ctx, ConnectCodeLevel(cerr.Code()), cerr.Message())
}
