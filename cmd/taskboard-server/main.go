package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/taskboard/internal/activity"
	activityrepo "github.com/kazz187/taskboard/internal/activity/repositoryimpl"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/dashboard"
	"github.com/kazz187/taskboard/internal/employee"
	employeerepo "github.com/kazz187/taskboard/internal/employee/repositoryimpl"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/remark"
	remarkrepo "github.com/kazz187/taskboard/internal/remark/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/ctrace"
	"github.com/kazz187/taskboard/pkg/panicerr"
	"github.com/kazz187/taskboard/pkg/storage"

	server "github.com/kazz187/taskboard/internal"
)

var version = "dev"

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}
	setupLogger(env)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	err = run(ctx, env)
	cancel()
	if err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func setupLogger(env *config.Env) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

// run serves until ctx is done, then shuts the server down.
func run(ctx context.Context, env *config.Env) error {
	shutdownTracing, err := ctrace.Init("taskboard-server", version, env.TraceOutput)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()

	store, closeStore, err := openStorage(ctx, &env.StorageEnv)
	if err != nil {
		return err
	}
	defer closeStore()

	bus := eventbus.New()

	// Setup repositories
	userRepo := userrepo.NewYAMLRepository(store)
	employeeRepo := employeerepo.NewYAMLRepository(store)
	taskRepo := taskrepo.NewYAMLRepository(store)
	remarkRepo := remarkrepo.NewYAMLRepository(store)
	activityRepo := activityrepo.NewYAMLRepository(store)

	created, err := employee.BootstrapAdmin(ctx, employeeRepo, userRepo, env.BootstrapAdminEmail, env.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if created {
		slog.Info("bootstrap admin created", "email", env.BootstrapAdminEmail)
	}

	// Setup servers
	tokens := auth.NewTokenIssuer(env.JWTSecret, env.TokenTTL)
	authenticator := auth.NewAuthenticator(tokens, userRepo)
	recorder := activity.NewRecorder(activityRepo)

	authServer := auth.NewServer(tokens, userRepo)
	userServer := user.NewServer(userRepo)
	employeeServer := employee.NewServer(employeeRepo, userRepo, env.DefaultPassword, env.EmailDomain)
	taskServer := task.NewServer(taskRepo, transition.Policy{}, userServer, employeeRepo, recorder, bus)
	remarkServer := remark.NewServer(remarkRepo, remark.NewAttachmentStore(store, remark.DefaultMaxAttachmentSize), taskServer, recorder, bus)
	taskServer.PurgeOnDelete(remarkServer, recorder)
	activityServer := activity.NewServer(activityRepo, taskServer)
	dashboardServer := dashboard.NewServer(taskRepo, employeeRepo, userRepo)
	eventServer := event.NewServer(bus, taskServer)

	srv := server.NewServer(
		env,
		authenticator,
		authServer,
		userServer,
		employeeServer,
		taskServer,
		remarkServer,
		activityServer,
		dashboardServer,
		eventServer,
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}))
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")

		// Give active connections time to finish after stream contexts are cancelled.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return p.Wait()
}

func openStorage(ctx context.Context, env *config.StorageEnv) (storage.Storage, func(), error) {
	noop := func() {}
	switch env.Type {
	case "s3":
		s, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return s, noop, nil
	case "postgres":
		s, err := storage.NewPostgresStorage(ctx, env.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create postgres storage: %w", err)
		}
		return s, s.Close, nil
	case "redis":
		s, err := storage.NewRedisStorage(ctx, env.RedisURL, env.RedisPrefix)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create redis storage: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("failed to close redis storage", "error", err)
			}
		}, nil
	default:
		s, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create local storage: %w", err)
		}
		return s, noop, nil
	}
}
