package auth

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var publicProcedures = map[string]struct{}{
	taskboardv1connect.AuthServiceLoginProcedure: {},
	"/grpc.health.v1.Health/Check":               {},
	"/grpc.health.v1.Health/Watch":               {},
}

type interceptor struct {
	auth *Authenticator
}

// NewInterceptor authenticates every procedure except login and health.
func NewInterceptor(a *Authenticator) connect.Interceptor {
	return &interceptor{auth: a}
}

func (i *interceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		ctx, err := i.authenticate(ctx, req.Spec().Procedure, req.Header())
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *interceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *interceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := i.authenticate(ctx, conn.Spec().Procedure, conn.RequestHeader())
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

func (i *interceptor) authenticate(ctx context.Context, procedure string, header http.Header) (context.Context, error) {
	if _, ok := publicProcedures[procedure]; ok {
		return ctx, nil
	}
	a, err := i.auth.Authenticate(ctx, header)
	if err != nil {
		return ctx, err
	}
	return actor.NewContext(ctx, a), nil
}

// Middleware authenticates plain HTTP routes. Failures are reported through
// the cerr JSON response receiver.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		act, err := a.Authenticate(r.Context(), r.Header)
		if err != nil {
			cerr.SetJSONError(r.Context(), err)
			return
		}
		next.ServeHTTP(w, r.WithContext(actor.NewContext(r.Context(), act)))
	})
}
