package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/actor"
)

// Recorder appends entries to task trails. Recording is best effort: a
// failure is logged and never fails the change that triggered it.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// Record stores an entry for taskID. before and after are marshaled to YAML
// and diffed; pass nil for either side to skip the diff.
func (r *Recorder) Record(ctx context.Context, taskID string, a actor.Actor, kind Kind, message string, before, after any) {
	entry := &Activity{
		ID:        ulid.Make().String(),
		TaskID:    taskID,
		ActorID:   a.UserID,
		Role:      a.Role,
		Kind:      kind,
		Message:   message,
		CreatedAt: r.now(),
	}
	if before != nil && after != nil {
		diff, err := Diff(before, after)
		if err != nil {
			slog.WarnContext(ctx, "failed to diff task", "task_id", taskID, "error", err)
		}
		entry.Diff = diff
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to record activity", "task_id", taskID, "kind", kind, "error", err)
	}
}

// PurgeTask drops the whole trail of a task.
func (r *Recorder) PurgeTask(ctx context.Context, taskID string) error {
	return r.repo.DeleteByTask(ctx, taskID)
}

// Diff renders a unified diff between the YAML forms of before and after.
func Diff(before, after any) (string, error) {
	a, err := yaml.Marshal(before)
	if err != nil {
		return "", err
	}
	b, err := yaml.Marshal(after)
	if err != nil {
		return "", err
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(ud)
}
