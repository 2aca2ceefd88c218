package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/employee"
	"github.com/kazz187/taskboard/internal/transition"
)

var (
	allowedColor = color.New(color.FgGreen, color.Bold)
	deniedColor  = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.Bold)
	dimColor     = color.New(color.Faint)

	statusColors = map[string]*color.Color{
		transition.StatusTodo.String():       color.New(color.FgWhite),
		transition.StatusInProgress.String(): color.New(color.FgCyan),
		transition.StatusReview.String():     color.New(color.FgYellow),
		transition.StatusDone.String():       color.New(color.FgGreen),
	}
	priorityColors = map[string]*color.Color{
		"high":   color.New(color.FgRed),
		"medium": color.New(color.FgYellow),
		"low":    color.New(color.FgBlue),
	}
)

type printer struct {
	w   io.Writer
	dir *employee.Directory
}

func newPrinter(w io.Writer, dir *employee.Directory) *printer {
	return &printer{w: w, dir: dir}
}

func (p *printer) name(ctx context.Context, id string) (string, error) {
	if p.dir == nil || id == "" {
		return id, nil
	}
	return p.dir.Name(ctx, id)
}

func statusLabel(s string) string {
	label := transition.Status(s).Label()
	if c, ok := statusColors[s]; ok {
		return c.Sprint(label)
	}
	return label
}

func priorityLabel(s string) string {
	if c, ok := priorityColors[s]; ok {
		return c.Sprint(s)
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}

func (p *printer) done(format string, args ...any) {
	fmt.Fprintln(p.w, allowedColor.Sprintf(format, args...))
}

func (p *printer) login(resp *taskboardv1.LoginResponse) {
	fmt.Fprintf(p.w, "Logged in as %s (%s), token expires %s\n",
		resp.User.Name, strings.Join(resp.User.Roles, ", "), resp.ExpiresAt.Local().Format(time.DateTime))
	fmt.Fprintf(p.w, "export TASKBOARD_TOKEN=%s\n", resp.Token)
}

func (p *printer) me(resp *taskboardv1.GetMeResponse) {
	fmt.Fprintf(p.w, "%s %s\n", headerColor.Sprint(resp.User.Name), dimColor.Sprintf("<%s>", resp.User.Email))
	fmt.Fprintf(p.w, "ID:          %s\n", resp.User.ID)
	fmt.Fprintf(p.w, "Roles:       %s\n", strings.Join(resp.User.Roles, ", "))
	fmt.Fprintf(p.w, "Active role: %s\n", resp.ActiveRole)
}

func (p *printer) verdict(v *taskboardv1.Verdict) {
	if v == nil {
		return
	}
	if v.Allowed {
		fmt.Fprintln(p.w, allowedColor.Sprint("allowed"))
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", deniedColor.Sprint("denied"), v.Reason)
}

func (p *printer) tasks(ctx context.Context, resp *taskboardv1.ListTasksResponse) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor.Sprint("ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tDUE"))
	for _, t := range resp.Tasks {
		assignee, err := p.name(ctx, t.AssignedTo)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, statusLabel(t.Status), priorityLabel(t.Priority), assignee, formatDate(t.ExpectedClosure))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(p.w, dimColor.Sprintf("%d of %d tasks", len(resp.Tasks), resp.Total))
	return nil
}

func (p *printer) task(ctx context.Context, t *taskboardv1.Task) error {
	names := make(map[string]string)
	for _, id := range []string{t.CreatedBy, t.AssignedTo, t.AssignedBy, t.Reviewer, t.UpdatedBy} {
		n, err := p.name(ctx, id)
		if err != nil {
			return err
		}
		names[id] = n
	}
	fmt.Fprintf(p.w, "%s %s\n", headerColor.Sprint(t.Title), dimColor.Sprintf("(%s)", t.ID))
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Status:\t%s\n", statusLabel(t.Status))
	fmt.Fprintf(tw, "Priority:\t%s\n", priorityLabel(t.Priority))
	fmt.Fprintf(tw, "Created by:\t%s\n", names[t.CreatedBy])
	if t.AssignedTo != "" {
		fmt.Fprintf(tw, "Assigned to:\t%s (by %s)\n", names[t.AssignedTo], names[t.AssignedBy])
	}
	if t.Reviewer != "" {
		fmt.Fprintf(tw, "Reviewer:\t%s\n", names[t.Reviewer])
	}
	fmt.Fprintf(tw, "Expected closure:\t%s\n", formatDate(t.ExpectedClosure))
	if t.ActualClosure != nil {
		fmt.Fprintf(tw, "Closed:\t%s\n", formatDate(t.ActualClosure))
	}
	fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Local().Format(time.DateTime))
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.Description != "" {
		fmt.Fprintf(p.w, "\n%s\n", t.Description)
	}
	return nil
}

func (p *printer) remarks(ctx context.Context, remarks []*taskboardv1.Remark) error {
	for _, r := range remarks {
		author, err := p.name(ctx, r.CreatedBy)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.w, "%s %s %s\n", headerColor.Sprint(author), dimColor.Sprintf("[%s]", r.Role), dimColor.Sprint(r.CreatedAt.Local().Format(time.DateTime)))
		fmt.Fprintf(p.w, "  %s\n", r.Comment)
		if a := r.Attachment; a != nil {
			fmt.Fprintf(p.w, "  %s %s (%s, %d bytes) /api/attachments/%s\n", dimColor.Sprint("attachment:"), a.Name, a.ContentType, a.Size, r.ID)
		}
		fmt.Fprintln(p.w, dimColor.Sprintf("  id: %s", r.ID))
	}
	return nil
}

func (p *printer) employees(ctx context.Context, employees []*taskboardv1.Employee) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor.Sprint("ID\tNAME\tEMAIL\tDESIGNATION\tMANAGER"))
	for _, e := range employees {
		manager, err := p.name(ctx, e.ManagerID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Email, e.Designation, manager)
	}
	return tw.Flush()
}

func (p *printer) dashboard(resp *taskboardv1.GetDashboardResponse) {
	fmt.Fprintf(p.w, "%s %s\n", headerColor.Sprint("Dashboard"), dimColor.Sprintf("(%s)", resp.Role))
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, s := range resp.Statuses {
		fmt.Fprintf(tw, "%s\t%d\n", statusLabel(s.Status), s.Count)
	}
	fmt.Fprintf(tw, "Total\t%d\n", resp.Total)
	fmt.Fprintf(tw, "Overdue\t%s\n", deniedColor.Sprint(resp.Overdue))
	if resp.Employees != nil {
		fmt.Fprintf(tw, "Employees\t%d\n", *resp.Employees)
	}
	if resp.Users != nil {
		fmt.Fprintf(tw, "Users\t%d\n", *resp.Users)
	}
	_ = tw.Flush()
}

func (p *printer) activity(ctx context.Context, resp *taskboardv1.ListActivityResponse, diff bool) error {
	for _, a := range resp.Activities {
		who, err := p.name(ctx, a.ActorID)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.w, "%s %s %s %s\n",
			dimColor.Sprint(a.CreatedAt.Local().Format(time.DateTime)), headerColor.Sprint(who), dimColor.Sprintf("[%s]", a.Role), a.Message)
		if diff && a.Diff != "" {
			for _, line := range strings.Split(strings.TrimRight(a.Diff, "\n"), "\n") {
				switch {
				case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
					fmt.Fprintln(p.w, "  "+allowedColor.Sprint(line))
				case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
					fmt.Fprintln(p.w, "  "+deniedColor.Sprint(line))
				default:
					fmt.Fprintln(p.w, "  "+dimColor.Sprint(line))
				}
			}
		}
	}
	fmt.Fprintln(p.w, dimColor.Sprintf("%d of %d entries", len(resp.Activities), resp.Total))
	return nil
}
