package yamlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

type doc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

func newCollection(t *testing.T) (*Collection[doc], storage.Storage) {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return New[doc](s, "docs", "doc"), s
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newCollection(t)

	require.NoError(t, c.Create(ctx, "1", &doc{ID: "1", Name: "first"}))
	err := c.Create(ctx, "1", &doc{ID: "1"})
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	got, err := c.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &doc{ID: "1", Name: "first"}, got)

	got.Name = "renamed"
	require.NoError(t, c.Update(ctx, "1", got))
	got, err = c.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	err = c.Update(ctx, "2", &doc{ID: "2"})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	require.NoError(t, c.Delete(ctx, "1"))
	_, err = c.Get(ctx, "1")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(c.Delete(ctx, "1"), cerr.NotFound))

	for _, id := range []string{"", "../users/1", "a/b", ".hidden"} {
		_, err = c.Get(ctx, id)
		assert.True(t, cerr.IsCode(err, cerr.InvalidArgument), id)
	}
}

func TestCollectionAllSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	c, s := newCollection(t)

	require.NoError(t, c.Put(ctx, "a", &doc{ID: "a"}))
	require.NoError(t, c.Put(ctx, "b", &doc{ID: "b"}))
	require.NoError(t, s.Write(ctx, "docs/broken.yaml", []byte("id: [")))

	all, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	only, err := c.Filter(ctx, func(d *doc) bool { return d.ID == "b" })
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "b", only[0].ID)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, Page(items, 2, 0))
	assert.Equal(t, []int{4, 5}, Page(items, 2, 3))
	assert.Equal(t, []int{3, 4, 5}, Page(items, 0, 2))
	assert.Nil(t, Page(items, 2, 5))
	assert.Equal(t, items, Page(items, 0, -1))
}
