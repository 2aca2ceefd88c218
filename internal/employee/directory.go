package employee

import (
	"context"
	"sync"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// Source resolves a single employee. Repository satisfies it; the CLI
// provides one backed by the employee service.
type Source interface {
	Get(ctx context.Context, id string) (*Employee, error)
}

// Directory memoizes employee names for display. It never evicts, so create
// one per request or CLI invocation rather than sharing it process-wide.
type Directory struct {
	src   Source
	mu    sync.Mutex
	names map[string]string
}

func NewDirectory(src Source) *Directory {
	return &Directory{src: src, names: make(map[string]string)}
}

// Name returns the display name for id. Unknown ids resolve to the id
// itself and are remembered like any other entry.
func (d *Directory) Name(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	d.mu.Lock()
	name, ok := d.names[id]
	d.mu.Unlock()
	if ok {
		return name, nil
	}

	name = id
	e, err := d.src.Get(ctx, id)
	switch {
	case err == nil:
		name = e.Name
	case cerr.IsCode(err, cerr.NotFound), cerr.IsCode(err, cerr.InvalidArgument):
	default:
		return "", err
	}

	d.mu.Lock()
	d.names[id] = name
	d.mu.Unlock()
	return name, nil
}

// Len reports how many ids have been resolved.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.names)
}
