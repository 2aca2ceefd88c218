package auth

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/api/taskboard/v1/taskboardv1connect"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ taskboardv1connect.AuthServiceHandler = (*Server)(nil)

type Server struct {
	tokens *TokenIssuer
	users  user.Repository
}

func NewServer(tokens *TokenIssuer, users user.Repository) *Server {
	return &Server{tokens: tokens, users: users}
}

func (s *Server) Login(ctx context.Context, req *connect.Request[taskboardv1.LoginRequest]) (*connect.Response[taskboardv1.LoginResponse], error) {
	u, err := s.lookup(ctx, strings.TrimSpace(req.Msg.Login))
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active() || !user.CheckPassword(u.PasswordHash, req.Msg.Password) {
		slog.InfoContext(ctx, "login rejected", "login", req.Msg.Login)
		return nil, cerr.NewError(cerr.Unauthenticated, "invalid credentials", nil)
	}
	token, expiresAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	slog.InfoContext(ctx, "login succeeded", "user_id", u.ID)
	return connect.NewResponse(&taskboardv1.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToProto(u),
	}), nil
}

// lookup resolves an employee id or email. A nil user means no match.
func (s *Server) lookup(ctx context.Context, login string) (*user.User, error) {
	if login == "" {
		return nil, nil
	}
	var (
		u   *user.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.users.FindByEmail(ctx, login)
	} else {
		u, err = s.users.Get(ctx, login)
	}
	if cerr.IsCode(err, cerr.NotFound) || cerr.IsCode(err, cerr.InvalidArgument) {
		return nil, nil
	}
	return u, err
}

func (s *Server) GetMe(ctx context.Context, _ *connect.Request[taskboardv1.GetMeRequest]) (*connect.Response[taskboardv1.GetMeResponse], error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskboardv1.GetMeResponse{
		User:       user.ToProto(u),
		ActiveRole: a.Role.String(),
	}), nil
}
