package repositoryimpl

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kazz187/taskboard/internal/employee"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
	"github.com/kazz187/taskboard/pkg/yamlstore"
)

const employeesPrefix = "employees"

type YAMLRepository struct {
	employees *yamlstore.Collection[employee.Employee]
	// guards NextID so concurrent creates do not hand out the same id
	mu     sync.Mutex
	lastID int
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{employees: yamlstore.New[employee.Employee](s, employeesPrefix, "employee")}
}

func (r *YAMLRepository) Create(ctx context.Context, e *employee.Employee) error {
	existing, err := r.FindByEmail(ctx, e.Email)
	switch {
	case err == nil && existing.ID != e.ID:
		return cerr.NewError(cerr.AlreadyExists, "employee with this email already exists", nil)
	case err != nil && !cerr.IsCode(err, cerr.NotFound):
		return err
	}
	return r.employees.Create(ctx, e.ID, e)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*employee.Employee, error) {
	return r.employees.Get(ctx, id)
}

func (r *YAMLRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	found, err := r.employees.Filter(ctx, func(e *employee.Employee) bool {
		return strings.EqualFold(e.Email, strings.TrimSpace(email))
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, cerr.NewError(cerr.NotFound, "employee not found", nil)
	}
	return found[0], nil
}

func (r *YAMLRepository) List(ctx context.Context, managerID string) ([]*employee.Employee, error) {
	list, err := r.employees.Filter(ctx, func(e *employee.Employee) bool {
		return managerID == "" || (e.ManagerID == managerID && e.ID != managerID)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return lessID(list[i].ID, list[j].ID) })
	return list, nil
}

func (r *YAMLRepository) Update(ctx context.Context, e *employee.Employee) error {
	existing, err := r.FindByEmail(ctx, e.Email)
	switch {
	case err == nil && existing.ID != e.ID:
		return cerr.NewError(cerr.AlreadyExists, "employee with this email already exists", nil)
	case err != nil && !cerr.IsCode(err, cerr.NotFound):
		return err
	}
	return r.employees.Update(ctx, e.ID, e)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.employees.Delete(ctx, id)
}

// NextID hands out increasing numeric ids, so employees can log in with a
// short id the way they are used to.
func (r *YAMLRepository) NextID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.employees.All(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range all {
		if n, err := strconv.Atoi(e.ID); err == nil && n > r.lastID {
			r.lastID = n
		}
	}
	r.lastID++
	return strconv.Itoa(r.lastID), nil
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
