package employee

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kazz187/taskboard/internal/transition"
	"github.com/kazz187/taskboard/internal/user"
)

// BootstrapAdmin creates the first admin when no user exists yet. It is a
// no-op once any user is present. The admin is its own manager.
func BootstrapAdmin(ctx context.Context, employees Repository, users user.Repository, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	existing, err := users.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	hash, err := user.HashPassword(password)
	if err != nil {
		return false, err
	}
	id, err := employees.NextID(ctx)
	if err != nil {
		return false, err
	}
	now := time.Now()
	e := &Employee{
		ID:          id,
		Name:        "Administrator",
		Email:       email,
		Designation: "Administrator",
		ManagerID:   id,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if vs := Validate(e, ""); len(vs) > 0 {
		return false, errors.New("bootstrap admin: " + vs[0].Message)
	}
	if err := employees.Create(ctx, e); err != nil {
		return false, err
	}
	err = users.Create(ctx, &user.User{
		ID:           id,
		Name:         e.Name,
		Email:        email,
		PasswordHash: hash,
		Roles:        []transition.Role{transition.RoleAdmin, transition.RoleManager, transition.RoleDeveloper},
		Status:       user.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, errors.Join(err, employees.Delete(ctx, id))
	}
	slog.InfoContext(ctx, "bootstrap admin created", "employee_id", id, "email", email)
	return true, nil
}
