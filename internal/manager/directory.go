package manager

import (
	"context"
	"errors"
	"time"

	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo"
)

// Directory resolves tenants for the routing edge. Lookups distinguish
// "tenant does not exist" from transient store failures so the edge can fail
// closed without misclassifying outages as unknown tenants.
type Directory interface {
	LookupBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	LookupByID(ctx context.Context, id string) (*model.Tenant, error)
	IsActive(tenant *model.Tenant) bool
}

type TenantDirectory struct {
	repo repo.Repo
	now  func() time.Time
}

func NewTenantDirectory(r repo.Repo) *TenantDirectory {
	return &TenantDirectory{
		repo: r,
		now:  time.Now,
	}
}

// LookupBySlug fetches the tenant claiming the given subdomain slug.
func (d *TenantDirectory) LookupBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return d.lookup(ctx, *repo.NewQuery().Where(repo.SlugField, slug))
}

// LookupByID fetches a tenant by its identifier.
func (d *TenantDirectory) LookupByID(ctx context.Context, id string) (*model.Tenant, error) {
	return d.lookup(ctx, *repo.NewQuery().Where(repo.IDField, id))
}

func (d *TenantDirectory) lookup(ctx context.Context, query repo.Query) (*model.Tenant, error) {
	tenant := model.Tenant{}

	_, err := d.repo.First(ctx, &tenant, query)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTenantNotFound
		}

		log.Error(ctx, "tenant lookup failed", err)

		return nil, errs.Wrap(ErrTenantLookup, err)
	}

	return &tenant, nil
}

// IsActive evaluates the tenant's serving eligibility at the current instant.
// Trial tenants go dark the moment their trial ends, regardless of what the
// stored status column still says.
func (d *TenantDirectory) IsActive(tenant *model.Tenant) bool {
	return tenant.IsActive(d.now())
}

// ListExpiredTrials feeds trial tenants whose trial ended before now to
// processFunc in pages. The matched set is snapshotted before processing, so
// processFunc may mutate the rows it receives (the expiry sweep suspends
// them) without shifting rows out of later pages.
func (d *TenantDirectory) ListExpiredTrials(
	ctx context.Context,
	processFunc func([]*model.Tenant) error,
) error {
	query := repo.NewQuery().
		Where(repo.StatusField, model.TenantStatusTrial).
		WhereOp(repo.TrialEndsAtField, repo.LessThan, d.now())

	var expired []*model.Tenant

	err := repo.ProcessInBatch(ctx, d.repo, query, repo.DefaultLimit, func(tenants []*model.Tenant) error {
		expired = append(expired, tenants...)
		return nil
	})
	if err != nil {
		return errs.Wrap(ErrListTenants, err)
	}

	for start := 0; start < len(expired); start += repo.DefaultLimit {
		end := min(start+repo.DefaultLimit, len(expired))

		err = processFunc(expired[start:end])
		if err != nil {
			return errs.Wrap(ErrListTenants, err)
		}
	}

	return nil
}

// Suspend marks a tenant suspended. The trial-expiry sweep uses it to settle
// expired trials into a terminal status.
func (d *TenantDirectory) Suspend(ctx context.Context, tenantID string) error {
	ok, err := d.repo.Patch(ctx,
		&model.Tenant{ID: tenantID, Status: model.TenantStatusSuspended},
		repo.Query{},
	)
	if err != nil {
		return errs.Wrap(ErrSuspendTenant, err)
	}

	if !ok {
		return ErrTenantNotFound
	}

	return nil
}
