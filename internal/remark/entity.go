package remark

import (
	"time"

	"github.com/kazz187/taskboard/internal/transition"
)

const MaxCommentLength = 1000

type Remark struct {
	ID         string          `yaml:"id"`
	TaskID     string          `yaml:"task_id"`
	Comment    string          `yaml:"comment"`
	CreatedBy  string          `yaml:"created_by"`
	Role       transition.Role `yaml:"role"`
	Attachment *Attachment     `yaml:"attachment,omitempty"`
	CreatedAt  time.Time       `yaml:"created_at"`
	UpdatedAt  time.Time       `yaml:"updated_at"`
}

// Attachment describes a file stored next to the remark. The content lives
// in storage under attachments/<ID>.
type Attachment struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	ContentType string `yaml:"content_type"`
	Size        int64  `yaml:"size"`
}
