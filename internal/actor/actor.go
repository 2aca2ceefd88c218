// Package actor carries the authenticated caller through a request context.
package actor

import (
	"context"
	"slices"

	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// Actor is the authenticated user and the role the request acts as. Roles
// lists every role the user holds.
type Actor struct {
	UserID string
	Role   transition.Role
	Roles  []transition.Role
}

func (a Actor) Is(roles ...transition.Role) bool {
	return slices.Contains(roles, a.Role)
}

func (a Actor) Holds(role transition.Role) bool {
	return slices.Contains(a.Roles, role)
}

// Transition is the policy's view of the actor.
func (a Actor) Transition() transition.Actor {
	return transition.Actor{Role: a.Role, UserID: a.UserID}
}

type ctxKey struct{}

func NewContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// Require returns the actor or an Unauthenticated error.
func Require(ctx context.Context) (Actor, error) {
	a, ok := FromContext(ctx)
	if !ok || a.UserID == "" {
		return Actor{}, cerr.NewError(cerr.Unauthenticated, "authentication required", nil)
	}
	return a, nil
}

// RequireRole returns the actor when it acts as one of roles, otherwise a
// PermissionDenied error with msg.
func RequireRole(ctx context.Context, msg string, roles ...transition.Role) (Actor, error) {
	a, err := Require(ctx)
	if err != nil {
		return Actor{}, err
	}
	if !a.Is(roles...) {
		return Actor{}, cerr.NewError(cerr.PermissionDenied, msg, nil)
	}
	return a, nil
}
