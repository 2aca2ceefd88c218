package employee

import (
	"regexp"
	"strings"

	"github.com/kazz187/taskboard/pkg/cerr"
)

var (
	namePattern        = regexp.MustCompile(`^[\p{L}' -]+$`)
	emailPattern       = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)+$`)
	designationPattern = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)
)

// Validate checks the employee's fields. When emailDomain is set the email
// must belong to it. A nil result means the employee is valid.
func Validate(e *Employee, emailDomain string) []cerr.Violation {
	var vs []cerr.Violation
	if strings.TrimSpace(e.Name) == "" || !namePattern.MatchString(e.Name) {
		vs = append(vs, cerr.Violation{Field: "name", Message: "name should contain only letters, spaces, apostrophes and hyphens"})
	}
	switch {
	case !emailPattern.MatchString(e.Email):
		vs = append(vs, cerr.Violation{Field: "email", Message: "email must be a valid address"})
	case emailDomain != "" && !strings.HasSuffix(strings.ToLower(e.Email), "@"+strings.ToLower(strings.TrimPrefix(emailDomain, "@"))):
		vs = append(vs, cerr.Violation{Field: "email", Message: "email must end with @" + strings.TrimPrefix(emailDomain, "@")})
	}
	if strings.TrimSpace(e.Designation) == "" || !designationPattern.MatchString(e.Designation) {
		vs = append(vs, cerr.Violation{Field: "designation", Message: "designation should contain only letters, numbers, spaces and hyphens"})
	}
	if strings.TrimSpace(e.ManagerID) == "" {
		vs = append(vs, cerr.Violation{Field: "managerId", Message: "manager id is required"})
	}
	return vs
}
