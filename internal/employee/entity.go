package employee

import "time"

type Employee struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Email       string    `yaml:"email"`
	Designation string    `yaml:"designation"`
	ManagerID   string    `yaml:"manager_id"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}
