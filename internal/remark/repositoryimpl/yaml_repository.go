package repositoryimpl

import (
	"context"
	"sort"

	"github.com/kazz187/taskboard/internal/remark"
	"github.com/kazz187/taskboard/pkg/storage"
	"github.com/kazz187/taskboard/pkg/yamlstore"
)

const remarksPrefix = "remarks"

type YAMLRepository struct {
	remarks *yamlstore.Collection[remark.Remark]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{remarks: yamlstore.New[remark.Remark](s, remarksPrefix, "remark")}
}

func (r *YAMLRepository) Create(ctx context.Context, rm *remark.Remark) error {
	return r.remarks.Create(ctx, rm.ID, rm)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*remark.Remark, error) {
	return r.remarks.Get(ctx, id)
}

func (r *YAMLRepository) ListByTask(ctx context.Context, taskID string) ([]*remark.Remark, error) {
	list, err := r.remarks.Filter(ctx, func(rm *remark.Remark) bool { return rm.TaskID == taskID })
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *YAMLRepository) Update(ctx context.Context, rm *remark.Remark) error {
	return r.remarks.Update(ctx, rm.ID, rm)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.remarks.Delete(ctx, id)
}
