package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/internal/actor"
	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func newUsers(t *testing.T) user.Repository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)
	hash, err := user.HashPassword("password123")
	require.NoError(t, err)
	ctx := context.Background()
	for _, u := range []*user.User{
		{ID: "5", Email: "mia@example.com", Roles: []transition.Role{transition.RoleDeveloper, transition.RoleManager}, Status: user.StatusActive},
		{ID: "8", Email: "gone@example.com", Roles: []transition.Role{transition.RoleDeveloper}, Status: user.StatusInactive},
	} {
		u.PasswordHash = hash
		require.NoError(t, repo.Create(ctx, u))
	}
	return repo
}

func TestTokenIssuer(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return now }

	token, expiresAt, err := issuer.Issue("5")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "5", id)

	_, err = NewTokenIssuer("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	authn := NewAuthenticator(tokens, newUsers(t))
	ctx := context.Background()

	header := func(id, role string) http.Header {
		h := http.Header{}
		if id != "" {
			token, _, err := tokens.Issue(id)
			require.NoError(t, err)
			h.Set("Authorization", "Bearer "+token)
		}
		if role != "" {
			h.Set(taskboardv1.RoleHeader, role)
		}
		return h
	}

	tests := []struct {
		name     string
		header   http.Header
		wantRole transition.Role
		wantCode cerr.Code
	}{
		{name: "defaults to highest role", header: header("5", ""), wantRole: transition.RoleManager},
		{name: "explicit held role", header: header("5", "Developer"), wantRole: transition.RoleDeveloper},
		{name: "role not held", header: header("5", "admin"), wantCode: cerr.PermissionDenied},
		{name: "unknown role", header: header("5", "owner"), wantCode: cerr.InvalidArgument},
		{name: "inactive user", header: header("8", ""), wantCode: cerr.Unauthenticated},
		{name: "unknown user", header: header("404", ""), wantCode: cerr.Unauthenticated},
		{name: "no token", header: header("", ""), wantCode: cerr.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := authn.Authenticate(ctx, tt.header)
			if tt.wantCode != cerr.OK {
				assert.True(t, cerr.IsCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "5", a.UserID)
			assert.Equal(t, tt.wantRole, a.Role)
			assert.ElementsMatch(t, []transition.Role{transition.RoleDeveloper, transition.RoleManager}, a.Roles)
		})
	}
}

func TestLogin(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	users := newUsers(t)
	srv := NewServer(tokens, users)
	ctx := context.Background()

	for _, login := range []string{"5", "MIA@example.com"} {
		resp, err := srv.Login(ctx, connect.NewRequest(&taskboardv1.LoginRequest{Login: login, Password: "password123"}))
		require.NoError(t, err, login)
		id, err := tokens.Verify(resp.Msg.Token)
		require.NoError(t, err)
		assert.Equal(t, "5", id)
		assert.Equal(t, "5", resp.Msg.User.ID)
	}

	for _, tt := range []struct{ login, password string }{
		{"5", "wrong"},
		{"8", "password123"},
		{"nobody@example.com", "password123"},
		{"../5", "password123"},
		{"", ""},
	} {
		_, err := srv.Login(ctx, connect.NewRequest(&taskboardv1.LoginRequest{Login: tt.login, Password: tt.password}))
		assert.True(t, cerr.IsCode(err, cerr.Unauthenticated), tt.login)
	}
}

func TestGetMe(t *testing.T) {
	srv := NewServer(NewTokenIssuer("secret", time.Hour), newUsers(t))

	_, err := srv.GetMe(context.Background(), connect.NewRequest(&taskboardv1.GetMeRequest{}))
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))

	ctx := actor.NewContext(context.Background(), actor.Actor{UserID: "5", Role: transition.RoleDeveloper})
	resp, err := srv.GetMe(ctx, connect.NewRequest(&taskboardv1.GetMeRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "developer", resp.Msg.ActiveRole)
	assert.Equal(t, "mia@example.com", resp.Msg.User.Email)
}
