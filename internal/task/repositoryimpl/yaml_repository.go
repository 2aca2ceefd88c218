package repositoryimpl

import (
	"context"
	"sort"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/storage"
	"github.com/kazz187/taskboard/pkg/yamlstore"
)

const tasksPrefix = "tasks"

type YAMLRepository struct {
	tasks *yamlstore.Collection[task.Task]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{tasks: yamlstore.New[task.Task](s, tasksPrefix, "task")}
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	return r.tasks.Create(ctx, t.ID, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	return r.tasks.Get(ctx, id)
}

func (r *YAMLRepository) List(ctx context.Context, f task.Filter, limit, offset int) ([]*task.Task, int, error) {
	all, err := r.tasks.Filter(ctx, f.Match)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return yamlstore.Page(all, limit, offset), len(all), nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	return r.tasks.Update(ctx, t.ID, t)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.tasks.Delete(ctx, id)
}
