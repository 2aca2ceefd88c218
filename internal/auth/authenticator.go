package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

// Authenticator resolves request headers to an actor: the bearer token names
// the user and the role header picks which of the user's roles is active.
type Authenticator struct {
	tokens *TokenIssuer
	users  user.Repository
}

func NewAuthenticator(tokens *TokenIssuer, users user.Repository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, header http.Header) (actor.Actor, error) {
	raw, ok := bearerToken(header.Get("Authorization"))
	if !ok {
		return actor.Actor{}, cerr.NewError(cerr.Unauthenticated, "authentication required", nil)
	}
	userID, err := a.tokens.Verify(raw)
	if err != nil {
		return actor.Actor{}, cerr.NewError(cerr.Unauthenticated, "invalid or expired token", err)
	}
	u, err := a.users.Get(ctx, userID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return actor.Actor{}, cerr.NewError(cerr.Unauthenticated, "invalid or expired token", err)
		}
		return actor.Actor{}, err
	}
	if !u.Active() {
		return actor.Actor{}, cerr.NewError(cerr.Unauthenticated, "user is inactive", nil)
	}
	role, err := ActiveRole(u, header.Get(taskboardv1.RoleHeader))
	if err != nil {
		return actor.Actor{}, err
	}
	clog.AddActor(ctx, u.ID, role.String())
	return actor.Actor{UserID: u.ID, Role: role, Roles: u.Roles}, nil
}

// ActiveRole picks the role a request acts as. An empty requested role
// selects the most privileged role the user holds.
func ActiveRole(u *user.User, requested string) (transition.Role, error) {
	if len(u.Roles) == 0 {
		return "", cerr.NewError(cerr.PermissionDenied, "the user has no roles", nil)
	}
	if strings.TrimSpace(requested) == "" {
		return user.HighestRole(u.Roles), nil
	}
	role, ok := user.NormalizeRole(requested)
	if !ok {
		return "", cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown role %q", requested), nil)
	}
	if !u.HasRole(role) {
		return "", cerr.NewError(cerr.PermissionDenied, "the user doesn't have the mentioned role", nil)
	}
	return role, nil
}

func bearerToken(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
