package repositoryimpl

import (
	"context"
	"strings"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
	"github.com/kazz187/taskboard/pkg/yamlstore"
)

const usersPrefix = "users"

type YAMLRepository struct {
	users *yamlstore.Collection[user.User]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{users: yamlstore.New[user.User](s, usersPrefix, "user")}
}

func (r *YAMLRepository) Create(ctx context.Context, u *user.User) error {
	existing, err := r.FindByEmail(ctx, u.Email)
	switch {
	case err == nil && existing.ID != u.ID:
		return cerr.NewError(cerr.AlreadyExists, "user with this email already exists", nil)
	case err != nil && !cerr.IsCode(err, cerr.NotFound):
		return err
	}
	return r.users.Create(ctx, u.ID, u)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*user.User, error) {
	return r.users.Get(ctx, id)
}

func (r *YAMLRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	found, err := r.users.Filter(ctx, func(u *user.User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	return found[0], nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*user.User, error) {
	return r.users.All(ctx)
}

func (r *YAMLRepository) Update(ctx context.Context, u *user.User) error {
	return r.users.Update(ctx, u.ID, u)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.users.Delete(ctx, id)
}
