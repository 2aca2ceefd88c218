// Package yamlstore persists documents as one YAML file per id on top of a
// storage.Storage. Errors are returned as *cerr.Error so servers can pass
// them through unchanged.
package yamlstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

type Collection[T any] struct {
	storage storage.Storage
	prefix  string
	kind    string
}

// New returns a collection stored under prefix. kind names a single
// document in error messages ("task", "remark").
func New[T any](s storage.Storage, prefix, kind string) *Collection[T] {
	return &Collection[T]{storage: s, prefix: prefix, kind: kind}
}

func (c *Collection[T]) path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", c.prefix, id)
}

// checkID rejects ids that would address a file outside the collection.
func (c *Collection[T]) checkID(id string) error {
	if id == "" {
		return cerr.NewError(cerr.InvalidArgument, c.kind+" id is required", nil)
	}
	if strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return cerr.NewError(cerr.InvalidArgument, "invalid "+c.kind+" id", nil)
	}
	return nil
}

func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	if err := c.checkID(id); err != nil {
		return false, err
	}
	ok, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return false, cerr.WrapStorageReadError(c.kind, err)
	}
	return ok, nil
}

func (c *Collection[T]) Create(ctx context.Context, id string, v *T) error {
	exists, err := c.Exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, c.kind+" already exists", nil)
	}
	return c.Put(ctx, id, v)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := c.checkID(id); err != nil {
		return nil, err
	}
	data, err := c.storage.Read(ctx, c.path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.kind, err)
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal %s: %w", c.kind, err))
	}
	return &v, nil
}

// Update overwrites an existing document and fails with NotFound otherwise.
func (c *Collection[T]) Update(ctx context.Context, id string, v *T) error {
	exists, err := c.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, c.kind+" not found", nil)
	}
	return c.Put(ctx, id, v)
}

// Put writes v regardless of whether id exists.
func (c *Collection[T]) Put(ctx context.Context, id string, v *T) error {
	if err := c.checkID(id); err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal %s: %w", c.kind, err))
	}
	if err := c.storage.Write(ctx, c.path(id), data); err != nil {
		return cerr.WrapStorageWriteError(c.kind, err)
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.checkID(id); err != nil {
		return err
	}
	if err := c.storage.Delete(ctx, c.path(id)); err != nil {
		return cerr.WrapStorageDeleteError(c.kind, err)
	}
	return nil
}

// All loads every document in path order. Unreadable documents are logged
// and skipped so one corrupt file does not take the board down.
func (c *Collection[T]) All(ctx context.Context) ([]*T, error) {
	paths, err := c.storage.List(ctx, c.prefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.kind+" list", err)
	}
	out := make([]*T, 0, len(paths))
	for _, p := range paths {
		data, err := c.storage.Read(ctx, p)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable document", "path", p, "error", err)
			continue
		}
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			slog.WarnContext(ctx, "skipping malformed document", "path", p, "error", err)
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

// Filter returns the documents keep accepts.
func (c *Collection[T]) Filter(ctx context.Context, keep func(*T) bool) ([]*T, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, v := range all {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Page applies offset/limit to items. A non-positive limit means no limit.
func Page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
