package remark

import "context"

type Repository interface {
	Create(ctx context.Context, r *Remark) error
	Get(ctx context.Context, id string) (*Remark, error)
	// ListByTask returns the task's remarks oldest first.
	ListByTask(ctx context.Context, taskID string) ([]*Remark, error)
	Update(ctx context.Context, r *Remark) error
	Delete(ctx context.Context, id string) error
}
