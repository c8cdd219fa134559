package sql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo"
	"github.com/reasyhq/platform/internal/repo/violations"
	reasycontext "github.com/reasyhq/platform/utils/context"
)

const PublicSchema = "public"

var ErrUnsupportedOrderDirective = errors.New("unsupported order directive")

// ResourceRepository represents the repository for managing Resource data.
type ResourceRepository struct {
	db *multitenancy.DB
}

// NewRepository creates and returns a new instance of ResourceRepository.
func NewRepository(db *multitenancy.DB) *ResourceRepository {
	return &ResourceRepository{
		db: db,
	}
}

// WithTenant runs GORM actions in the schema the resource belongs to. Shared
// resources run against the public schema; tenant resources require a tenant
// id in the context, which is resolved to the tenant's schema on every call.
// A missing or unknown tenant aborts the operation; data access never
// silently proceeds unscoped.
func (r *ResourceRepository) WithTenant(
	ctx context.Context,
	resource repo.Resource,
	fn func(tx *multitenancy.DB) error,
) error {
	var schemaName string

	if resource.IsSharedModel() {
		schemaName = PublicSchema
	} else {
		tenantID, err := reasycontext.ExtractTenantID(ctx)
		if err != nil {
			return errs.Wrap(repo.ErrWithTenant, err)
		}

		var existingTenant model.Tenant

		err = r.db.Where("id = ?", tenantID).First(&existingTenant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrTenantNotFound
		} else if err != nil {
			return errs.Wrap(repo.ErrWithTenant, err)
		}

		schemaName = existingTenant.SchemaName
	}

	committer, ok := r.db.Statement.ConnPool.(gorm.TxCommitter)
	if committer != nil && ok {
		// Already inside a transaction: pin the search path on the current
		// connection instead of opening a nested transaction.
		reset, err := r.db.UseTenant(ctx, schemaName)

		defer func() {
			if reset != nil {
				resetErr := reset()
				if resetErr != nil {
					log.Error(ctx, "error resetting tenant", resetErr)
				}
			}
		}()

		if err != nil {
			return errs.Wrap(repo.ErrWithTenant, err)
		}

		return fn(r.db)
	}

	var err error

	txErr := r.db.WithTenant(
		ctx, schemaName, func(tx *multitenancy.DB) error {
			err = fn(tx)
			return err
		},
	)
	if txErr != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return err
}

// Create adds meta information and stores a Resource.
func (r *ResourceRepository) Create(ctx context.Context, resource repo.Resource) error {
	return r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			err := tx.WithContext(ctx).Create(resource).Error
			if err != nil {
				log.Error(ctx, "error creating resource", err)

				if errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err) {
					return errs.Wrap(repo.ErrUniqueConstraint, err)
				}

				return errs.Wrap(repo.ErrCreateResource, err)
			}

			return nil
		},
	)
}

// List retrieves records from the database based on the provided query parameters and model.
// Result is an address
func (r *ResourceRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	var count int64

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyConditions(tx.WithContext(ctx).Model(resource), query)
			if err != nil {
				return err
			}

			db = db.Count(&count)
			if db.Error != nil {
				return db.Error
			}

			db, err = applyOrder(db, query)
			if err != nil {
				return err
			}

			res := applyPagination(db, query).Find(result)
			if res.Error != nil {
				return res.Error
			}

			return nil
		},
	)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// Delete removes the Resource.
//
// It returns true if a record was deleted successfully,
// false if there was no record to delete,
// and error if there was an error during the deletion.
func (r *ResourceRepository) Delete(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var result *gorm.DB

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyConditions(tx.WithContext(ctx).Clauses(clause.Returning{}), query)
			if err != nil {
				return err
			}

			result = db.Delete(resource)

			if result.Error != nil {
				log.Error(ctx, "error deleting resource", result.Error)
				return errs.Wrap(repo.ErrDeleteResource, result.Error)
			}

			return nil
		},
	)
	if err != nil {
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// First fills the given Resource with data, if found. The given Resource is
// also used as query data, so primary key fields act as conditions.
func (r *ResourceRepository) First(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyConditions(tx.WithContext(ctx).Model(resource), query)
			if err != nil {
				return err
			}

			res = db.First(resource)

			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrRecordNotFound) {
					return errs.Wrap(repo.ErrNotFound, res.Error)
				}

				log.Error(ctx, "error finding the resource", res.Error)

				return errs.Wrap(repo.ErrGetResource, res.Error)
			}

			return nil
		},
	)
	if err != nil {
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// Patch updates the resource fields selected by the query conditions.
//
// It returns true if a record was patched successfully,
// and error if there was an error during the patch.
func (r *ResourceRepository) Patch(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyConditions(tx.WithContext(ctx).Model(resource).Clauses(clause.Returning{}), query)
			if err != nil {
				return err
			}

			res = db.Updates(resource)

			err = res.Error
			if err != nil {
				log.Error(ctx, "error updating resource", err)

				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.Wrap(repo.ErrNotFound, err)
				}

				if violations.IsUniqueConstraint(err) ||
					errors.Is(err, gorm.ErrDuplicatedKey) {
					return errs.Wrap(repo.ErrUniqueConstraint, err)
				}

				return err
			}

			return nil
		},
	)
	if err != nil {
		return false, errs.Wrap(repo.ErrUpdateResource, err)
	}

	return res.RowsAffected > 0, nil
}

// Transaction executes the given function within a database transaction.
func (r *ResourceRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := r.db.Transaction(
		func(db *multitenancy.DB) error {
			errorChan := make(chan error)

			go func() {
				errorChan <- txFunc(
					ctx,
					NewRepository(db),
				)
			}()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-errorChan:
				return err
			}
		},
	)
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

func applyConditions(db *gorm.DB, query repo.Query) (*gorm.DB, error) {
	err := query.Validate()
	if err != nil {
		return nil, err
	}

	for _, cond := range query.Conditions() {
		db = db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Op), cond.Value)
	}

	return db, nil
}

func applyOrder(db *gorm.DB, query repo.Query) (*gorm.DB, error) {
	field, dir := query.Order()
	if field == "" {
		return db, nil
	}

	switch dir {
	case repo.Asc, repo.Desc:
		return db.Order(fmt.Sprintf("%s %s", field, dir)), nil
	default:
		return nil, ErrUnsupportedOrderDirective
	}
}

func applyPagination(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.Limit() > 0 {
		db = db.Limit(query.Limit())
	}

	if query.Offset() > 0 {
		db = db.Offset(query.Offset())
	}

	return db
}
