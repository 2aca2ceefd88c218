package task

import (
	"strings"
	"unicode/utf8"

	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 250
)

func Validate(t *Task) []cerr.Violation {
	var vs []cerr.Violation
	switch {
	case strings.TrimSpace(t.Title) == "":
		vs = append(vs, cerr.Violation{Field: "title", Message: "title is required"})
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		vs = append(vs, cerr.Violation{Field: "title", Message: "title must be at most 100 characters"})
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		vs = append(vs, cerr.Violation{Field: "description", Message: "description must be at most 250 characters"})
	}
	if !t.Priority.Valid() {
		vs = append(vs, cerr.Violation{Field: "priority", Message: "priority must be one of high, medium, low"})
	}
	if !t.Status.Valid() {
		vs = append(vs, cerr.Violation{Field: "status", Message: "status must be one of todo, inprogress, review, done"})
	}
	return vs
}
