package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/client"
	"github.com/kazz187/taskboard/internal/employee"
	"github.com/kazz187/taskboard/internal/transition"
)

var (
	app = kingpin.New("taskboard", "Kanban task board client")

	serverFlag = app.Flag("server", "Server URL (overrides TASKBOARD_SERVER_URL)").String()
	tokenFlag  = app.Flag("token", "Bearer token (overrides TASKBOARD_TOKEN)").String()
	roleFlag   = app.Flag("role", "Role to act as (overrides TASKBOARD_ROLE)").Enum("admin", "manager", "developer")

	loginCmd      = app.Command("login", "Log in and print a token to export as TASKBOARD_TOKEN")
	loginID       = loginCmd.Arg("login", "Email or employee ID").Required().String()
	loginPassword = loginCmd.Flag("password", "Password").Envar("TASKBOARD_PASSWORD").Required().String()

	meCmd = app.Command("me", "Show the current user and active role")

	// Task commands
	taskCmd = app.Command("task", "Task commands")

	taskListCmd      = taskCmd.Command("list", "List visible tasks")
	taskListStatus   = taskListCmd.Flag("status", "Filter by status").Enum(statusNames()...)
	taskListPriority = taskListCmd.Flag("priority", "Filter by priority").Enum("high", "medium", "low")
	taskListAssignee = taskListCmd.Flag("assignee", "Filter by assignee ID").String()
	taskListLimit    = taskListCmd.Flag("limit", "Maximum number of tasks").Default("50").Int32()
	taskListOffset   = taskListCmd.Flag("offset", "Number of tasks to skip").Int32()

	taskShowCmd = taskCmd.Command("show", "Show task details")
	taskShowID  = taskShowCmd.Arg("id", "Task ID").Required().String()

	taskCreateCmd         = taskCmd.Command("create", "Create a new task")
	taskCreateTitle       = taskCreateCmd.Arg("title", "Task title").Required().String()
	taskCreateDescription = taskCreateCmd.Flag("description", "Task description").String()
	taskCreateAssignee    = taskCreateCmd.Flag("assignee", "Assignee employee ID").String()
	taskCreateReviewer    = taskCreateCmd.Flag("reviewer", "Reviewer employee ID").String()
	taskCreatePriority    = taskCreateCmd.Flag("priority", "Priority").Default("medium").Enum("high", "medium", "low")
	taskCreateDue         = taskCreateCmd.Flag("due", "Expected closure date (YYYY-MM-DD)").String()

	taskMoveCmd    = taskCmd.Command("move", "Move a task to another status")
	taskMoveID     = taskMoveCmd.Arg("id", "Task ID").Required().String()
	taskMoveStatus = taskMoveCmd.Arg("status", "New status").Required().Enum(statusNames()...)

	taskCheckCmd    = taskCmd.Command("check", "Check whether a move would be allowed")
	taskCheckID     = taskCheckCmd.Arg("id", "Task ID").Required().String()
	taskCheckStatus = taskCheckCmd.Arg("status", "New status").Required().Enum(statusNames()...)

	taskAssignCmd      = taskCmd.Command("assign", "Assign a task")
	taskAssignID       = taskAssignCmd.Arg("id", "Task ID").Required().String()
	taskAssignAssignee = taskAssignCmd.Arg("assignee", "Assignee employee ID").Required().String()
	taskAssignReviewer = taskAssignCmd.Flag("reviewer", "Reviewer employee ID").String()

	taskPriorityCmd   = taskCmd.Command("priority", "Change task priority")
	taskPriorityID    = taskPriorityCmd.Arg("id", "Task ID").Required().String()
	taskPriorityValue = taskPriorityCmd.Arg("priority", "New priority").Required().Enum("high", "medium", "low")

	taskDeleteCmd = taskCmd.Command("delete", "Delete a task")
	taskDeleteID  = taskDeleteCmd.Arg("id", "Task ID").Required().String()

	// Remark commands
	remarkCmd = app.Command("remark", "Remark commands")

	remarkListCmd = remarkCmd.Command("list", "List remarks on a task")
	remarkListID  = remarkListCmd.Arg("task", "Task ID").Required().String()

	remarkAddCmd     = remarkCmd.Command("add", "Add a remark to a task")
	remarkAddTask    = remarkAddCmd.Arg("task", "Task ID").Required().String()
	remarkAddComment = remarkAddCmd.Arg("comment", "Comment").Required().String()
	remarkAddFile    = remarkAddCmd.Flag("attach", "File to attach").ExistingFile()

	remarkDeleteCmd = remarkCmd.Command("delete", "Delete a remark")
	remarkDeleteID  = remarkDeleteCmd.Arg("id", "Remark ID").Required().String()

	// Employee commands
	employeeCmd = app.Command("employee", "Employee commands")

	employeeListCmd = employeeCmd.Command("list", "List employees")

	employeeAddCmd         = employeeCmd.Command("add", "Add an employee")
	employeeAddName        = employeeAddCmd.Arg("name", "Full name").Required().String()
	employeeAddEmail       = employeeAddCmd.Arg("email", "Email").Required().String()
	employeeAddDesignation = employeeAddCmd.Flag("designation", "Designation").Default("Developer").String()
	employeeAddManager     = employeeAddCmd.Flag("manager", "Manager employee ID").String()

	employeeDeleteCmd = employeeCmd.Command("delete", "Delete an employee")
	employeeDeleteID  = employeeDeleteCmd.Arg("id", "Employee ID").Required().String()

	dashboardCmd = app.Command("dashboard", "Show task counts for the active role")

	activityCmd    = app.Command("activity", "Show a task's activity trail")
	activityTask   = activityCmd.Arg("task", "Task ID").Required().String()
	activityLimit  = activityCmd.Flag("limit", "Maximum number of entries").Default("50").Int32()
	activityOffset = activityCmd.Flag("offset", "Number of entries to skip").Int32()
	activityDiff   = activityCmd.Flag("diff", "Show field diffs").Bool()

	// Offline policy evaluation
	policyCmd            = app.Command("policy", "Evaluate the transition policy locally")
	policyCheckCmd       = policyCmd.Command("check", "Evaluate a single transition")
	policyCheckRole      = policyCheckCmd.Flag("as", "Acting role").Required().Enum("admin", "manager", "developer")
	policyCheckUser      = policyCheckCmd.Flag("user", "Acting user ID").String()
	policyCheckFrom      = policyCheckCmd.Flag("from", "Current status").Required().Enum(statusNames()...)
	policyCheckTo        = policyCheckCmd.Flag("to", "New status").Required().Enum(statusNames()...)
	policyCheckCreatedBy = policyCheckCmd.Flag("created-by", "Task creator ID").String()
	policyCheckReviewer  = policyCheckCmd.Flag("reviewer", "Task reviewer ID").String()
)

func statusNames() []string {
	var names []string
	for _, s := range transition.Statuses() {
		names = append(names, s.String())
	}
	return names
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	if command == policyCheckCmd.FullCommand() {
		return policyCheck(os.Stdout, transition.Request{
			Task: transition.Snapshot{
				Status:    transition.Status(*policyCheckFrom),
				CreatedBy: *policyCheckCreatedBy,
				Reviewer:  *policyCheckReviewer,
			},
			Actor:     transition.Actor{Role: transition.Role(*policyCheckRole), UserID: *policyCheckUser},
			NewStatus: transition.Status(*policyCheckTo),
		})
	}

	cfg, err := client.LoadConfig()
	if err != nil {
		return err
	}
	for dst, flag := range map[*string]string{&cfg.ServerURL: *serverFlag, &cfg.Token: *tokenFlag, &cfg.Role: *roleFlag} {
		if flag != "" {
			*dst = flag
		}
	}
	c := client.New(nil, cfg)
	out := newPrinter(os.Stdout, employee.NewDirectory(c.Employees()))

	switch command {
	case loginCmd.FullCommand():
		resp, err := c.Login(ctx, *loginID, *loginPassword)
		if err != nil {
			return err
		}
		out.login(resp)

	case meCmd.FullCommand():
		resp, err := c.Me(ctx)
		if err != nil {
			return err
		}
		out.me(resp)

	case taskListCmd.FullCommand():
		resp, err := c.ListTasks(ctx, &taskboardv1.ListTasksRequest{
			Status:     *taskListStatus,
			Priority:   *taskListPriority,
			AssignedTo: *taskListAssignee,
			Limit:      *taskListLimit,
			Offset:     *taskListOffset,
		})
		if err != nil {
			return err
		}
		return out.tasks(ctx, resp)

	case taskShowCmd.FullCommand():
		t, err := c.GetTask(ctx, *taskShowID)
		if err != nil {
			return err
		}
		return out.task(ctx, t)

	case taskCreateCmd.FullCommand():
		req := &taskboardv1.CreateTaskRequest{
			Title:       *taskCreateTitle,
			Description: *taskCreateDescription,
			AssignedTo:  *taskCreateAssignee,
			Reviewer:    *taskCreateReviewer,
			Priority:    *taskCreatePriority,
		}
		if *taskCreateDue != "" {
			due, err := time.ParseInLocation(time.DateOnly, *taskCreateDue, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			req.ExpectedClosure = &due
		}
		t, err := c.CreateTask(ctx, req)
		if err != nil {
			return err
		}
		return out.task(ctx, t)

	case taskMoveCmd.FullCommand():
		resp, err := c.MoveTask(ctx, *taskMoveID, *taskMoveStatus)
		if err != nil {
			return err
		}
		out.verdict(resp.Verdict)
		return out.task(ctx, resp.Task)

	case taskCheckCmd.FullCommand():
		v, err := c.CheckTransition(ctx, *taskCheckID, *taskCheckStatus)
		if err != nil {
			return err
		}
		out.verdict(v)

	case taskAssignCmd.FullCommand():
		t, err := c.AssignTask(ctx, *taskAssignID, *taskAssignAssignee, *taskAssignReviewer)
		if err != nil {
			return err
		}
		return out.task(ctx, t)

	case taskPriorityCmd.FullCommand():
		t, err := c.UpdateTaskPriority(ctx, *taskPriorityID, *taskPriorityValue)
		if err != nil {
			return err
		}
		return out.task(ctx, t)

	case taskDeleteCmd.FullCommand():
		if err := c.DeleteTask(ctx, *taskDeleteID); err != nil {
			return err
		}
		out.done("Task %s deleted", *taskDeleteID)

	case remarkListCmd.FullCommand():
		remarks, err := c.ListRemarks(ctx, *remarkListID)
		if err != nil {
			return err
		}
		return out.remarks(ctx, remarks)

	case remarkAddCmd.FullCommand():
		var upload *taskboardv1.AttachmentUpload
		if *remarkAddFile != "" {
			data, err := os.ReadFile(*remarkAddFile)
			if err != nil {
				return err
			}
			name := filepath.Base(*remarkAddFile)
			upload = &taskboardv1.AttachmentUpload{
				Name:        name,
				ContentType: mime.TypeByExtension(filepath.Ext(name)),
				Data:        data,
			}
		}
		r, err := c.CreateRemark(ctx, *remarkAddTask, *remarkAddComment, upload)
		if err != nil {
			return err
		}
		return out.remarks(ctx, []*taskboardv1.Remark{r})

	case remarkDeleteCmd.FullCommand():
		if err := c.DeleteRemark(ctx, *remarkDeleteID); err != nil {
			return err
		}
		out.done("Remark %s deleted", *remarkDeleteID)

	case employeeListCmd.FullCommand():
		employees, err := c.ListEmployees(ctx)
		if err != nil {
			return err
		}
		return out.employees(ctx, employees)

	case employeeAddCmd.FullCommand():
		e, err := c.CreateEmployee(ctx, &taskboardv1.CreateEmployeeRequest{
			Name:        *employeeAddName,
			Email:       *employeeAddEmail,
			Designation: *employeeAddDesignation,
			ManagerID:   *employeeAddManager,
		})
		if err != nil {
			return err
		}
		return out.employees(ctx, []*taskboardv1.Employee{e})

	case employeeDeleteCmd.FullCommand():
		if err := c.DeleteEmployee(ctx, *employeeDeleteID); err != nil {
			return err
		}
		out.done("Employee %s deleted", *employeeDeleteID)

	case dashboardCmd.FullCommand():
		resp, err := c.Dashboard(ctx)
		if err != nil {
			return err
		}
		out.dashboard(resp)

	case activityCmd.FullCommand():
		resp, err := c.ListActivity(ctx, *activityTask, *activityLimit, *activityOffset)
		if err != nil {
			return err
		}
		return out.activity(ctx, resp, *activityDiff)

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func policyCheck(w io.Writer, req transition.Request) error {
	v, err := transition.Evaluate(req)
	if err != nil {
		return err
	}
	newPrinter(w, nil).verdict(&taskboardv1.Verdict{Allowed: v.Allowed, Reason: v.Reason})
	return nil
}
