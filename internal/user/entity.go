package user

import (
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/transition"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is the login account of an employee and shares its id.
type User struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Email        string            `yaml:"email"`
	PasswordHash string            `yaml:"password_hash"`
	Roles        []transition.Role `yaml:"roles"`
	Status       Status            `yaml:"status"`
	CreatedAt    time.Time         `yaml:"created_at"`
	UpdatedAt    time.Time         `yaml:"updated_at"`
}

func (u *User) HasRole(r transition.Role) bool {
	return slices.Contains(u.Roles, r)
}

func (u *User) Active() bool {
	return u.Status == StatusActive
}

// AddRole appends r unless the user already holds it and reports whether
// anything changed.
func (u *User) AddRole(r transition.Role) bool {
	if u.HasRole(r) {
		return false
	}
	u.Roles = append(u.Roles, r)
	return true
}

// UnmarshalYAML normalizes stored role strings, so records written by older
// clients ("Developer", "UserRole.MANAGER") load as canonical roles. Unknown
// roles are dropped and an empty status reads as active.
func (u *User) UnmarshalYAML(node *yaml.Node) error {
	type plain User
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*u = User(p)
	raw := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		raw[i] = string(r)
	}
	u.Roles, _ = NormalizeRoles(raw)
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}
