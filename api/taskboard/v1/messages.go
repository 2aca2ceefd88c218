package taskboardv1

import "time"

// AuthService

type LoginRequest struct {
	// Login is an employee id or an email address.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User       *User  `json:"user"`
	ActiveRole string `json:"activeRole"`
}

// UserService

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type ListUsersByRoleRequest struct {
	Role string `json:"role"`
}

type ListUsersByRoleResponse struct {
	Users []*User `json:"users"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

// UpdateUserRequest leaves nil fields unchanged.
type UpdateUserRequest struct {
	ID     string   `json:"id"`
	Name   *string  `json:"name,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Status *string  `json:"status,omitempty"`
}

type UpdateUserResponse struct {
	User *User `json:"user"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type DeleteUserResponse struct{}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordResponse struct{}

// EmployeeService

type CreateEmployeeRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
	ManagerID   string `json:"managerId"`
}

type CreateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
	User     *User     `json:"user"`
}

type ListEmployeesRequest struct{}

type ListEmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}

type GetEmployeeRequest struct {
	ID string `json:"id"`
}

type GetEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type UpdateEmployeeRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Designation *string `json:"designation,omitempty"`
	ManagerID   *string `json:"managerId,omitempty"`
}

type UpdateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type DeleteEmployeeRequest struct {
	ID string `json:"id"`
}

type DeleteEmployeeResponse struct{}

// TaskService

type CreateTaskRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	AssignedTo      string     `json:"assignedTo,omitempty"`
	Reviewer        string     `json:"reviewer,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	ExpectedClosure *time.Time `json:"expectedClosure,omitempty"`
}

type CreateTaskResponse struct {
	Task *Task `json:"task"`
}

type GetTaskRequest struct {
	ID string `json:"id"`
}

type GetTaskResponse struct {
	Task *Task `json:"task"`
}

type ListTasksRequest struct {
	Status     string `json:"status,omitempty"`
	Priority   string `json:"priority,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty"`
	Limit      int32  `json:"limit,omitempty"`
	Offset     int32  `json:"offset,omitempty"`
}

type ListTasksResponse struct {
	Tasks []*Task `json:"tasks"`
	Total int32   `json:"total"`
}

// UpdateTaskRequest leaves nil fields unchanged. An empty AssignedTo or
// Reviewer clears the field.
type UpdateTaskRequest struct {
	ID              string     `json:"id"`
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	AssignedTo      *string    `json:"assignedTo,omitempty"`
	Reviewer        *string    `json:"reviewer,omitempty"`
	Priority        *string    `json:"priority,omitempty"`
	ExpectedClosure *time.Time `json:"expectedClosure,omitempty"`
}

type UpdateTaskResponse struct {
	Task *Task `json:"task"`
}

type MoveTaskRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type MoveTaskResponse struct {
	Task    *Task    `json:"task"`
	Verdict *Verdict `json:"verdict"`
}

type CheckTransitionRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CheckTransitionResponse struct {
	Verdict *Verdict `json:"verdict"`
}

type UpdateTaskPriorityRequest struct {
	ID       string `json:"id"`
	Priority string `json:"priority"`
}

type UpdateTaskPriorityResponse struct {
	Task *Task `json:"task"`
}

type DeleteTaskRequest struct {
	ID string `json:"id"`
}

type DeleteTaskResponse struct{}

// RemarkService

type CreateRemarkRequest struct {
	TaskID     string            `json:"taskId"`
	Comment    string            `json:"comment"`
	Attachment *AttachmentUpload `json:"attachment,omitempty"`
}

type CreateRemarkResponse struct {
	Remark *Remark `json:"remark"`
}

type ListRemarksRequest struct {
	TaskID string `json:"taskId"`
}

type ListRemarksResponse struct {
	Remarks []*Remark `json:"remarks"`
}

type UpdateRemarkRequest struct {
	ID         string            `json:"id"`
	Comment    *string           `json:"comment,omitempty"`
	Attachment *AttachmentUpload `json:"attachment,omitempty"`
}

type UpdateRemarkResponse struct {
	Remark *Remark `json:"remark"`
}

type DeleteRemarkRequest struct {
	ID string `json:"id"`
}

type DeleteRemarkResponse struct{}

// ActivityService

type ListActivityRequest struct {
	TaskID string `json:"taskId"`
	Limit  int32  `json:"limit,omitempty"`
	Offset int32  `json:"offset,omitempty"`
}

type ListActivityResponse struct {
	Activities []*Activity `json:"activities"`
	Total      int32       `json:"total"`
}

// DashboardService

type GetDashboardRequest struct{}

type GetDashboardResponse struct {
	Role     string         `json:"role"`
	Statuses []*StatusCount `json:"statuses"`
	Total    int32          `json:"total"`
	Overdue  int32          `json:"overdue"`
	// Set for admins only.
	Employees *int32 `json:"employees,omitempty"`
	Users     *int32 `json:"users,omitempty"`
}

// EventService

type SubscribeEventsRequest struct {
	EventTypes []EventType `json:"eventTypes,omitempty"`
	TaskID     string      `json:"taskId,omitempty"`
}
