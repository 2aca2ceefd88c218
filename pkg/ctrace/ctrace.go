// Package ctrace wires OpenTelemetry spans around connect procedures.
package ctrace

import (
	"context"
	"errors"
	"io"
	"os"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kazz187/taskboard/pkg/ctrace"

// Init installs a global tracer provider exporting to output: "-" for
// stdout, any other value is a file path. An empty output leaves the no-op
// provider in place. The returned function flushes and closes the exporter.
func Init(serviceName, serviceVersion, output string) (func(context.Context) error, error) {
	if output == "" {
		return func(context.Context) error { return nil }, nil
	}
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := NewTracerProvider(serviceName, serviceVersion, exporter)
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			err = errors.Join(err, closer.Close())
		}
		return err
	}, nil
}

func NewTracerProvider(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
}

type interceptor struct {
	tracer trace.Tracer
}

// NewConnectInterceptor opens one server span per procedure call. A nil
// provider uses the global one.
func NewConnectInterceptor(tp trace.TracerProvider) connect.Interceptor {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &interceptor{tracer: tp.Tracer(instrumentationName)}
}

func (i *interceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		ctx, span := i.start(ctx, req.Spec())
		defer span.End()
		resp, err := next(ctx, req)
		finish(span, err)
		return resp, err
	}
}

func (i *interceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *interceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, span := i.start(ctx, conn.Spec())
		defer span.End()
		err := next(ctx, conn)
		finish(span, err)
		return err
	}
}

func (i *interceptor) start(ctx context.Context, spec connect.Spec) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, spec.Procedure,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "connect_rpc"),
			attribute.String("rpc.method", spec.Procedure),
			attribute.String("rpc.stream_type", spec.StreamType.String()),
		),
	)
}

func finish(span trace.Span, err error) {
	if err == nil {
		span.SetAttributes(attribute.String("rpc.connect_rpc.error_code", "ok"))
		span.SetStatus(codes.Ok, "")
		return
	}
	code := connect.CodeOf(err)
	span.SetAttributes(attribute.String("rpc.connect_rpc.error_code", code.String()))
	span.RecordError(err)
	span.SetStatus(codes.Error, code.String())
}
