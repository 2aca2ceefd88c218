package taskboardv1

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Employee struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	ManagerID   string    `json:"managerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	CreatedBy       string     `json:"createdBy"`
	AssignedTo      string     `json:"assignedTo,omitempty"`
	AssignedBy      string     `json:"assignedBy,omitempty"`
	AssignedAt      *time.Time `json:"assignedAt,omitempty"`
	Reviewer        string     `json:"reviewer,omitempty"`
	UpdatedBy       string     `json:"updatedBy,omitempty"`
	ExpectedClosure *time.Time `json:"expectedClosure,omitempty"`
	ActualClosure   *time.Time `json:"actualClosure,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Verdict is the outcome of the status transition policy. Reason is set only
// when Allowed is false.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// AttachmentUpload carries file content inline; Data is base64 on the wire.
type AttachmentUpload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data"`
}

type Remark struct {
	ID         string      `json:"id"`
	TaskID     string      `json:"taskId"`
	Comment    string      `json:"comment"`
	CreatedBy  string      `json:"createdBy"`
	Role       string      `json:"role"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type Activity struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	ActorID   string    `json:"actorId"`
	Role      string    `json:"role"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Diff      string    `json:"diff,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type EventType string

const (
	EventTypeTaskCreated       EventType = "TASK_CREATED"
	EventTypeTaskUpdated       EventType = "TASK_UPDATED"
	EventTypeTaskStatusChanged EventType = "TASK_STATUS_CHANGED"
	EventTypeTaskDeleted       EventType = "TASK_DELETED"
	EventTypeRemarkAdded       EventType = "REMARK_ADDED"
	EventTypeRemarkUpdated     EventType = "REMARK_UPDATED"
	EventTypeRemarkDeleted     EventType = "REMARK_DELETED"
)

type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ResourceID string            `json:"resourceId"`
	Payload    string            `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type StatusCount struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int32  `json:"count"`
}
