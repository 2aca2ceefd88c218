package activity

import (
	"time"

	"github.com/kazz187/taskboard/internal/transition"
)

type Kind string

const (
	KindCreated         Kind = "created"
	KindUpdated         Kind = "updated"
	KindStatusChanged   Kind = "status_changed"
	KindPriorityChanged Kind = "priority_changed"
	KindRemarkAdded     Kind = "remark_added"
)

// Activity is one entry of a task's audit trail. Diff is a unified diff of
// the task document before and after the change, empty when nothing but
// metadata moved.
type Activity struct {
	ID        string          `yaml:"id"`
	TaskID    string          `yaml:"task_id"`
	ActorID   string          `yaml:"actor_id"`
	Role      transition.Role `yaml:"role"`
	Kind      Kind            `yaml:"kind"`
	Message   string          `yaml:"message"`
	Diff      string          `yaml:"diff,omitempty"`
	CreatedAt time.Time       `yaml:"created_at"`
}
