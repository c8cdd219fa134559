package mock

import (
	"context"
	"reflect"
	"sync"

	"github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"

	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/repo"
	reasycontext "github.com/reasyhq/platform/utils/context"
)

// InMemoryRepository is a tenant-aware repo.Repo backed by per-schema
// in-memory stores. Shared resources live in the public store, everything
// else in the store of the tenant carried by the context.
type InMemoryRepository struct {
	mu      sync.Mutex
	schemas map[string]*InMemoryDB

	// CreateErr, FirstErr and PatchErr, when set, are returned instead of
	// touching the store. Tests use them to simulate transient failures.
	CreateErr error
	FirstErr  error
	PatchErr  error
}

// NewInMemoryRepository creates and returns a new instance of InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		schemas: map[string]*InMemoryDB{},
	}
}

// WithTenant resolves the store the resource belongs to.
func (r *InMemoryRepository) WithTenant(
	ctx context.Context,
	resource repo.Resource,
) (*InMemoryDB, error) {
	if resource.IsSharedModel() {
		ctx = context.WithValue(ctx, nethttp.TenantKey, "public")
	}

	tenant, err := reasycontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, errs.Wrap(repo.ErrWithTenant, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	db, ok := r.schemas[tenant]
	if !ok {
		db = NewInMemoryDB()
		r.schemas[tenant] = db
	}

	return db, nil
}

// Create stores a copy of the Resource.
func (r *InMemoryRepository) Create(ctx context.Context, resource repo.Resource) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}

	db, err := r.WithTenant(ctx, resource)
	if err != nil {
		return err
	}

	return db.Insert(resource)
}

// List retrieves records matching the query into result, which must point to
// a slice of the resource's type. The returned count is the total number of
// matches before offset and limit, mirroring the SQL repository.
func (r *InMemoryRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	db, err := r.WithTenant(ctx, resource)
	if err != nil {
		return 0, err
	}

	rows, total, err := db.Find(resource, query)
	if err != nil {
		return 0, err
	}

	err = assignList(result, rows)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// Delete removes matching Resources, reporting whether any row was removed.
func (r *InMemoryRepository) Delete(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	db, err := r.WithTenant(ctx, resource)
	if err != nil {
		return false, err
	}

	removed, err := db.Remove(resource, query)
	if err != nil {
		return false, errs.Wrap(repo.ErrDeleteResource, err)
	}

	return removed > 0, nil
}

// First fills the given Resource with the first matching row.
func (r *InMemoryRepository) First(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	if r.FirstErr != nil {
		return false, r.FirstErr
	}

	db, err := r.WithTenant(ctx, resource)
	if err != nil {
		return false, err
	}

	rows, _, err := db.Find(resource, query)
	if err != nil {
		return false, errs.Wrap(repo.ErrGetResource, err)
	}

	if len(rows) == 0 {
		return false, repo.ErrNotFound
	}

	reflect.ValueOf(resource).Elem().Set(rows[0])

	return true, nil
}

// Patch merges the non-zero fields of resource into the matching rows.
func (r *InMemoryRepository) Patch(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	if r.PatchErr != nil {
		return false, r.PatchErr
	}

	db, err := r.WithTenant(ctx, resource)
	if err != nil {
		return false, err
	}

	updated, err := db.Update(resource, query)
	if err != nil {
		return false, errs.Wrap(repo.ErrUpdateResource, err)
	}

	return updated > 0, nil
}

// Transaction runs txFunc against the same store. There is no rollback; tests
// that need failure paths inject errors instead.
func (r *InMemoryRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := txFunc(ctx, r)
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

func assignList(result any, rows []reflect.Value) error {
	resultVal := reflect.ValueOf(result)
	if resultVal.Kind() != reflect.Ptr {
		return ErrMustPointerToSlice
	}

	sliceVal := resultVal.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return ErrMustBeSlice
	}

	elemType := sliceVal.Type().Elem()
	newSlice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(rows))

	for _, row := range rows {
		if elemType.Kind() == reflect.Ptr && row.Type() == elemType.Elem() {
			ptr := reflect.New(row.Type())
			ptr.Elem().Set(row)
			newSlice = reflect.Append(newSlice, ptr)

			continue
		}

		if !row.Type().AssignableTo(elemType) {
			return ErrItemNotAssignable
		}

		newSlice = reflect.Append(newSlice, row)
	}

	resultVal.Elem().Set(newSlice)

	return nil
}
