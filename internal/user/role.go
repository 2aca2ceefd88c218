package user

import (
	"strings"

	"github.com/kazz187/taskboard/internal/transition"
)

// NormalizeRole maps a free-form role string, as found in stored records and
// client requests ("UserRole.DEVELOPER", "Developer", "dev", " ADMIN "), to
// a canonical role. ok is false for anything it does not recognise.
func NormalizeRole(s string) (role transition.Role, ok bool) {
	v := strings.TrimSpace(s)
	if i := strings.LastIndex(v, "."); i >= 0 {
		v = v[i+1:]
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "admin":
		return transition.RoleAdmin, true
	case "manager":
		return transition.RoleManager, true
	case "developer", "dev", "developerrole":
		return transition.RoleDeveloper, true
	default:
		return "", false
	}
}

// NormalizeRoles normalizes every entry, dropping unknown values and
// duplicates while keeping first-seen order. The second result lists the
// rejected inputs.
func NormalizeRoles(in []string) ([]transition.Role, []string) {
	out := make([]transition.Role, 0, len(in))
	var rejected []string
	seen := make(map[transition.Role]struct{}, len(in))
	for _, s := range in {
		r, ok := NormalizeRole(s)
		if !ok {
			rejected = append(rejected, s)
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, rejected
}

// rank orders roles for picking a default active role.
func rank(r transition.Role) int {
	switch r {
	case transition.RoleAdmin:
		return 3
	case transition.RoleManager:
		return 2
	case transition.RoleDeveloper:
		return 1
	default:
		return 0
	}
}

// HighestRole returns the most privileged role in roles, or "" for none.
func HighestRole(roles []transition.Role) transition.Role {
	var best transition.Role
	for _, r := range roles {
		if rank(r) > rank(best) {
			best = r
		}
	}
	return best
}
