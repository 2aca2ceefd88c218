// Package transition decides which role may move a task between Kanban
// statuses. It is a pure function of its input: it performs no I/O and keeps
// no state between calls, so a single Policy can be shared freely across
// goroutines.
package transition

import "fmt"

const (
	ReasonDeveloper         = "Developers can only move tasks from To Do → In Progress or In Progress → Review."
	ReasonManagerNotOwner   = "Only the manager who created the task or the reviewer can change status from Review."
	ReasonManagerNoContext  = "Insufficient context to validate manager action."
	ReasonManagerTransition = "Managers can only change Review → Done or Review → In Progress for their tasks."
)

// Snapshot is the part of a task the policy looks at.
type Snapshot struct {
	Status    Status
	CreatedBy string
	// Reviewer is empty when no reviewer is designated.
	Reviewer string
}

// Actor is the user performing the move and the role they act as.
type Actor struct {
	Role   Role
	UserID string
}

type Request struct {
	Task      Snapshot
	Actor     Actor
	NewStatus Status
}

// Verdict carries Reason only when Allowed is false.
type Verdict struct {
	Allowed bool
	Reason  string
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Evaluator is implemented by Policy. Callers that want to substitute the
// decision in tests depend on this instead of the concrete type.
type Evaluator interface {
	Evaluate(req Request) (Verdict, error)
}

// Policy is the role based transition rule set. The zero value is ready to use.
type Policy struct{}

var _ Evaluator = Policy{}

// Evaluate returns the verdict for req. A non-nil error means the request
// itself is malformed (unknown role or status, or no actual move) and is a
// bug in the caller rather than a denial.
func (Policy) Evaluate(req Request) (Verdict, error) {
	if err := validate(req); err != nil {
		return Verdict{}, err
	}
	from, to := req.Task.Status, req.NewStatus

	switch req.Actor.Role {
	case RoleDeveloper:
		if (from == StatusTodo && to == StatusInProgress) || (from == StatusInProgress && to == StatusReview) {
			return allow(), nil
		}
		return deny(ReasonDeveloper), nil

	case RoleManager:
		if from != StatusReview || (to != StatusDone && to != StatusInProgress) {
			return deny(ReasonManagerTransition), nil
		}
		if req.Actor.UserID == "" || (req.Task.CreatedBy == "" && req.Task.Reviewer == "") {
			return deny(ReasonManagerNoContext), nil
		}
		if req.Actor.UserID == req.Task.CreatedBy || req.Actor.UserID == req.Task.Reviewer {
			return allow(), nil
		}
		return deny(ReasonManagerNotOwner), nil

	default: // RoleAdmin
		return allow(), nil
	}
}

func validate(req Request) error {
	if !req.Actor.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, req.Actor.Role)
	}
	if !req.Task.Status.Valid() {
		return fmt.Errorf("current %w: %q", ErrInvalidStatus, req.Task.Status)
	}
	if !req.NewStatus.Valid() {
		return fmt.Errorf("new %w: %q", ErrInvalidStatus, req.NewStatus)
	}
	if req.Task.Status == req.NewStatus {
		return fmt.Errorf("%w: %s", ErrNoTransition, req.NewStatus)
	}
	return nil
}

// Evaluate runs req against the default Policy.
func Evaluate(req Request) (Verdict, error) {
	return Policy{}.Evaluate(req)
}
