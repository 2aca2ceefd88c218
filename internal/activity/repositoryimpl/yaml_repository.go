package repositoryimpl

import (
	"context"
	"errors"
	"sort"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/pkg/storage"
	"github.com/kazz187/taskboard/pkg/yamlstore"
)

const activityPrefix = "activity"

// YAMLRepository keeps one directory per task so listing a trail never
// touches other tasks' entries.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func (r *YAMLRepository) collection(taskID string) *yamlstore.Collection[activity.Activity] {
	return yamlstore.New[activity.Activity](r.storage, activityPrefix+"/"+taskID, "activity")
}

func (r *YAMLRepository) Create(ctx context.Context, a *activity.Activity) error {
	return r.collection(a.TaskID).Create(ctx, a.ID, a)
}

func (r *YAMLRepository) List(ctx context.Context, taskID string, limit, offset int) ([]*activity.Activity, int, error) {
	all, err := r.collection(taskID).All(ctx)
	if err != nil {
		return nil, 0, err
	}
	// ulid ids sort in creation order
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return yamlstore.Page(all, limit, offset), len(all), nil
}

func (r *YAMLRepository) DeleteByTask(ctx context.Context, taskID string) error {
	c := r.collection(taskID)
	all, err := c.All(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, a := range all {
		if err := c.Delete(ctx, a.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
