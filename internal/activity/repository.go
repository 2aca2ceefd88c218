package activity

import "context"

type Repository interface {
	Create(ctx context.Context, a *Activity) error
	// List returns the task's entries oldest first together with the total
	// count before pagination.
	List(ctx context.Context, taskID string, limit, offset int) ([]*Activity, int, error)
	DeleteByTask(ctx context.Context, taskID string) error
}
