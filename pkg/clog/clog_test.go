package clog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewAttributesHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestAttributesFollowContext(t *testing.T) {
	ctx := ContextWithSlog(context.Background())
	AddActor(ctx, "3", "developer")
	AddAttributes(ctx, map[string]any{"task": map[string]any{"id": "t1"}})
	AddAttributes(ctx, map[string]any{"task": map[string]any{"status": "review"}})
	AddError(ctx, errors.New("denied"))

	var buf bytes.Buffer
	newJSONLogger(&buf).InfoContext(ctx, "moved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "3", line[ActorIDAttributeKey])
	assert.Equal(t, "developer", line[ActorRoleAttributeKey])
	assert.Equal(t, map[string]any{"id": "t1", "status": "review"}, line["task"])
	assert.Equal(t, "denied", line[ErrorAttributeKey])
	assert.EqualError(t, GetError(ctx), "denied")
}

func TestAttributesWithoutScope(t *testing.T) {
	ctx := context.Background()
	AddAttribute(ctx, "ignored", 1)
	assert.Nil(t, GetAttributes(ctx))
	assert.Empty(t, GetStack(ctx))

	var buf bytes.Buffer
	newJSONLogger(&buf).InfoContext(ctx, "plain")
	assert.NotContains(t, buf.String(), "ignored")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		status int
		want   slog.Level
	}{
		{status: http.StatusOK, want: slog.LevelInfo},
		{status: 499, want: slog.LevelInfo},
		{status: http.StatusNotFound, want: slog.LevelWarn},
		{status: http.StatusInternalServerError, want: slog.LevelError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusLevel(tt.status), tt.status)
	}
	assert.Equal(t, slog.LevelInfo, ConnectCodeLevel(connect.CodeFailedPrecondition))
	assert.Equal(t, slog.LevelInfo, ConnectCodeLevel(connect.CodePermissionDenied))
	assert.Equal(t, slog.LevelError, ConnectCodeLevel(connect.CodeInternal))
}

func TestSlogChiMiddleware(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(newJSONLogger(&buf))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := SlogChiMiddleware(WithChiFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health"
	}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddAttribute(r.Context(), "remark_id", "r1")
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/attachments/r1", nil))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/api/attachments/r1", line["procedure"])
	assert.Equal(t, "r1", line["remark_id"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
}
