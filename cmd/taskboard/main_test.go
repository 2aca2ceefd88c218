package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/transition"
)

func init() {
	color.NoColor = true
}

func TestPolicyCheck(t *testing.T) {
	tests := []struct {
		name string
		req  transition.Request
		want string
	}{
		{
			name: "developer starts work",
			req: transition.Request{
				Task:      transition.Snapshot{Status: transition.StatusTodo},
				Actor:     transition.Actor{Role: transition.RoleDeveloper, UserID: "3"},
				NewStatus: transition.StatusInProgress,
			},
			want: "allowed\n",
		},
		{
			name: "developer closes",
			req: transition.Request{
				Task:      transition.Snapshot{Status: transition.StatusReview},
				Actor:     transition.Actor{Role: transition.RoleDeveloper, UserID: "3"},
				NewStatus: transition.StatusDone,
			},
			want: "denied: " + transition.ReasonDeveloper + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, policyCheck(&buf, tt.req))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPolicyCheckRejectsSelfTransition(t *testing.T) {
	var buf bytes.Buffer
	err := policyCheck(&buf, transition.Request{
		Task:      transition.Snapshot{Status: transition.StatusDone},
		Actor:     transition.Actor{Role: transition.RoleAdmin},
		NewStatus: transition.StatusDone,
	})
	assert.ErrorIs(t, err, transition.ErrNoTransition)
	assert.Empty(t, buf.String())
}

func TestPrintTasks(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	var buf bytes.Buffer
	err := newPrinter(&buf, nil).tasks(t.Context(), &taskboardv1.ListTasksResponse{
		Tasks: []*taskboardv1.Task{
			{ID: "t1", Title: "Ship it", Status: "inprogress", Priority: "high", AssignedTo: "3", ExpectedClosure: &due},
		},
		Total: 4,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "1 of 4 tasks")
}
