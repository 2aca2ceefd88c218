package task

import (
	"context"

	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
)

// Filter narrows List. Zero fields match everything; a nil Viewer skips the
// visibility check.
type Filter struct {
	Status     transition.Status
	Priority   Priority
	AssignedTo string
	Viewer     *actor.Actor
}

func (f Filter) Match(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	return f.Viewer == nil || CanView(*f.Viewer, t)
}

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	// List returns matching tasks newest first and the total before
	// pagination. A non-positive limit returns everything.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Task, int, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
