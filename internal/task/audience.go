package task

import (
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
)

// Audience is the part of a task that decides who may see it. It travels in
// event metadata so subscribers can be filtered without loading the task.
type Audience struct {
	CreatedBy  string
	AssignedTo string
	AssignedBy string
	Reviewer   string
}

const (
	metaTaskID     = "task_id"
	metaCreatedBy  = "created_by"
	metaAssignedTo = "assigned_to"
	metaAssignedBy = "assigned_by"
	metaReviewer   = "reviewer"
)

func (t *Task) Audience() Audience {
	return Audience{
		CreatedBy:  t.CreatedBy,
		AssignedTo: t.AssignedTo,
		AssignedBy: t.AssignedBy,
		Reviewer:   t.Reviewer,
	}
}

// Visible reports whether a may see the task: admins see everything,
// managers what they created, assigned or review, developers what is
// assigned to them.
func (au Audience) Visible(a actor.Actor) bool {
	if a.UserID == "" {
		return false
	}
	switch a.Role {
	case transition.RoleAdmin:
		return true
	case transition.RoleManager:
		return a.UserID == au.CreatedBy || a.UserID == au.AssignedBy || a.UserID == au.Reviewer
	case transition.RoleDeveloper:
		return a.UserID == au.AssignedTo
	default:
		return false
	}
}

func CanView(a actor.Actor, t *Task) bool {
	return t.Audience().Visible(a)
}

// Metadata encodes the audience of task taskID for an event.
func (au Audience) Metadata(taskID string) map[string]string {
	md := map[string]string{metaTaskID: taskID, metaCreatedBy: au.CreatedBy}
	for k, v := range map[string]string{metaAssignedTo: au.AssignedTo, metaAssignedBy: au.AssignedBy, metaReviewer: au.Reviewer} {
		if v != "" {
			md[k] = v
		}
	}
	return md
}

// AudienceFromMetadata reverses Metadata. The second result is the task id.
func AudienceFromMetadata(md map[string]string) (Audience, string) {
	return Audience{
		CreatedBy:  md[metaCreatedBy],
		AssignedTo: md[metaAssignedTo],
		AssignedBy: md[metaAssignedBy],
		Reviewer:   md[metaReviewer],
	}, md[metaTaskID]
}
