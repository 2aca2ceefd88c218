package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/kazz187/taskboard/internal/transition"
)

var ErrInvalidPriority = errors.New("invalid priority")

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

type Task struct {
	ID              string            `yaml:"id"`
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	Status          transition.Status `yaml:"status"`
	Priority        Priority          `yaml:"priority"`
	CreatedBy       string            `yaml:"created_by"`
	AssignedTo      string            `yaml:"assigned_to,omitempty"`
	AssignedBy      string            `yaml:"assigned_by,omitempty"`
	AssignedAt      *time.Time        `yaml:"assigned_at,omitempty"`
	Reviewer        string            `yaml:"reviewer,omitempty"`
	UpdatedBy       string            `yaml:"updated_by,omitempty"`
	ExpectedClosure *time.Time        `yaml:"expected_closure,omitempty"`
	ActualClosure   *time.Time        `yaml:"actual_closure,omitempty"`
	CreatedAt       time.Time         `yaml:"created_at"`
	UpdatedAt       time.Time         `yaml:"updated_at"`
}

// Snapshot is what the transition policy sees of the task.
func (t *Task) Snapshot() transition.Snapshot {
	return transition.Snapshot{
		Status:    t.Status,
		CreatedBy: t.CreatedBy,
		Reviewer:  t.Reviewer,
	}
}

// Overdue reports whether the expected closure has passed on an open task.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status != transition.StatusDone && t.ExpectedClosure != nil && t.ExpectedClosure.Before(now)
}

// setStatus moves the task and keeps ActualClosure in step with done.
func (t *Task) setStatus(s transition.Status, now time.Time) {
	switch {
	case s == transition.StatusDone:
		t.ActualClosure = &now
	case t.Status == transition.StatusDone:
		t.ActualClosure = nil
	}
	t.Status = s
}

// assign sets or, with an empty assignee, clears the assignment.
func (t *Task) assign(assignee, by string, now time.Time) {
	if assignee == "" {
		t.AssignedTo, t.AssignedBy, t.AssignedAt = "", "", nil
		return
	}
	t.AssignedTo, t.AssignedBy, t.AssignedAt = assignee, by, &now
}
