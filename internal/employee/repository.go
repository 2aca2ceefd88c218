package employee

import "context"

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	Get(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	// List returns every employee, or only the direct reports of managerID
	// when it is not empty.
	List(ctx context.Context, managerID string) ([]*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	// NextID returns an id no employee has used yet.
	NextID(ctx context.Context) (string, error)
}
