package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/dashboard"
	"github.com/kazz187/taskboard/internal/employee"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/remark"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/ctrace"
)

type Server struct {
	mu              sync.Mutex
	server          *http.Server
	closed          bool
	env             *config.Env
	authenticator   *auth.Authenticator
	authServer      *auth.Server
	userServer      *user.Server
	employeeServer  *employee.Server
	taskServer      *task.Server
	remarkServer    *remark.Server
	activityServer  *activity.Server
	dashboardServer *dashboard.Server
	eventServer     *event.Server
}

func NewServer(
	env *config.Env,
	authenticator *auth.Authenticator,
	authServer *auth.Server,
	userServer *user.Server,
	employeeServer *employee.Server,
	taskServer *task.Server,
	remarkServer *remark.Server,
	activityServer *activity.Server,
	dashboardServer *dashboard.Server,
	eventServer *event.Server,
) *Server {
	return &Server{
		env:             env,
		authenticator:   authenticator,
		authServer:      authServer,
		userServer:      userServer,
		employeeServer:  employeeServer,
		taskServer:      taskServer,
		remarkServer:    remarkServer,
		activityServer:  activityServer,
		dashboardServer: dashboardServer,
		eventServer:     eventServer,
	}
}

// Handler returns the complete HTTP handler: connect services, the /api
// router, health checks, CORS and h2c.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewConvertConnectErrorChiMiddleware(),
		)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticator.Middleware)
			r.Get("/attachments/{remarkID}", s.remarkServer.DownloadAttachment)
		})
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	mux := http.NewServeMux()

	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(
		taskboardv1connect.AuthServiceName,
		taskboardv1connect.UserServiceName,
		taskboardv1connect.EmployeeServiceName,
		taskboardv1connect.TaskServiceName,
		taskboardv1connect.RemarkServiceName,
		taskboardv1connect.ActivityServiceName,
		taskboardv1connect.DashboardServiceName,
		taskboardv1connect.EventServiceName,
	)))

	handlerOpts := connect.WithInterceptors(s.interceptors()...)

	mux.Handle(taskboardv1connect.NewAuthServiceHandler(s.authServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewUserServiceHandler(s.userServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewEmployeeServiceHandler(s.employeeServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewTaskServiceHandler(s.taskServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewRemarkServiceHandler(s.remarkServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewActivityServiceHandler(s.activityServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewDashboardServiceHandler(s.dashboardServer, handlerOpts))
	mux.Handle(taskboardv1connect.NewEventServiceHandler(s.eventServer, handlerOpts))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:   s.env.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", "Grpc-Status", "Grpc-Message", "Connect-Protocol-Version"},
		AllowCredentials: true,
	}).Handler(mux), &http2.Server{})
}

// ListenAndServe starts the HTTP server. The provided context is used as the
// base context for all incoming requests via http.Server.BaseContext. When ctx
// is cancelled (e.g. on shutdown signal), all streaming RPC contexts are also
// cancelled, allowing the server to shut down without waiting for streams.
// ListenAndServe returns http.ErrServerClosed once Shutdown has been called,
// including when Shutdown ran first.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.env.Addr()
	slog.Info("starting server", "addr", addr)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	srv := s.server
	s.mu.Unlock()
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// interceptors run outermost first: logging sees the converted error, and
// authentication runs inside the trace span.
func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(clog.WithConnectFilter(clog.SkipHealthCheck)),
		cerr.NewConvertConnectErrorInterceptor(),
		ctrace.NewConnectInterceptor(otel.GetTracerProvider()),
		auth.NewInterceptor(s.authenticator),
	}
}
